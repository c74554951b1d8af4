package suppliers

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when a supplier does not exist.
var ErrNotFound = errors.New("suppliers: not found")

// Document types accepted for suppliers.
const (
	DocRUC = "RUC"
	DocDNI = "DNI"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Supplier is a vendor purchases are bought from.
type Supplier struct {
	ID             string    `json:"id"`
	DocumentType   string    `json:"documentType"`
	DocumentNumber string    `json:"documentNumber"`
	BusinessName   string    `json:"businessName"`
	TradeName      string    `json:"tradeName,omitempty"`
	Address        string    `json:"address,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Contact        string    `json:"contact,omitempty"`
	Status         string    `json:"status"`
	RegisteredAt   time.Time `json:"registeredAt"`
}

// Input is the create/update payload. Business name and document number are
// mandatory.
type Input struct {
	DocumentType   string `json:"documentType" validate:"omitempty,oneof=RUC DNI"`
	DocumentNumber string `json:"documentNumber" validate:"required"`
	BusinessName   string `json:"businessName" validate:"required,max=200"`
	TradeName      string `json:"tradeName" validate:"max=200"`
	Address        string `json:"address" validate:"max=300"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	Email          string `json:"email" validate:"omitempty,email"`
	Contact        string `json:"contact" validate:"max=120"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive"`
}

var (
	rucPattern = regexp.MustCompile(`^\d{11}$`)
	dniPattern = regexp.MustCompile(`^\d{8}$`)
)

func documentRule(sl validator.StructLevel) {
	in := sl.Current().Interface().(Input)
	number := strings.TrimSpace(in.DocumentNumber)
	if number == "" {
		return
	}
	pattern := rucPattern
	if in.DocumentType == DocDNI {
		pattern = dniPattern
	}
	if !pattern.MatchString(number) {
		tag := strings.ToLower(in.DocumentType)
		if tag == "" {
			tag = "ruc"
		}
		sl.ReportError(in.DocumentNumber, "DocumentNumber", "DocumentNumber", tag, "")
	}
}

func (in Input) apply(s Supplier) Supplier {
	s.DocumentType = in.DocumentType
	if s.DocumentType == "" {
		s.DocumentType = DocRUC
	}
	s.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	s.BusinessName = strings.TrimSpace(in.BusinessName)
	s.TradeName = strings.TrimSpace(in.TradeName)
	s.Address = strings.TrimSpace(in.Address)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Email = strings.ToLower(strings.TrimSpace(in.Email))
	s.Contact = strings.TrimSpace(in.Contact)
	s.Status = in.Status
	if s.Status == "" {
		s.Status = StatusActive
	}
	return s
}

// Query filters the supplier list. Field picks "name" (business name),
// "document" or "email"; any other value matches all three.
type Query struct {
	Term   string
	Field  string
	Status string
}

func (q Query) match(s Supplier) bool {
	if q.Status != "" && s.Status != q.Status {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Term))
	if term == "" {
		return true
	}
	switch q.Field {
	case "name":
		return strings.Contains(strings.ToLower(s.BusinessName), term)
	case "document":
		return strings.Contains(s.DocumentNumber, term)
	case "email":
		return strings.Contains(strings.ToLower(s.Email), term)
	}
	return strings.Contains(strings.ToLower(s.BusinessName), term) ||
		strings.Contains(strings.ToLower(s.TradeName), term) ||
		strings.Contains(s.DocumentNumber, term) ||
		strings.Contains(strings.ToLower(s.Email), term)
}
