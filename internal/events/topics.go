package events

// Topic constants for domain events emitted by the point of sale.
const (
	TopicSaleCommitted   = "sale.committed"
	TopicStockReassigned = "stock.reassigned"
	TopicProductSaved    = "product.saved"
	TopicProductDeleted  = "product.deleted"
)

// DefaultTopics returns the canonical list of topics published by the API.
func DefaultTopics() []string {
	return []string{
		TopicSaleCommitted,
		TopicStockReassigned,
		TopicProductSaved,
		TopicProductDeleted,
	}
}
