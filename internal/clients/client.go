package clients

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when a client does not exist.
var ErrNotFound = errors.New("clients: not found")

// Document types.
const (
	DocDNI = "DNI"
	DocRUC = "RUC"
	DocCE  = "CE"
)

// Status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// PickerLimit caps the number of matches offered by the POS client picker.
const PickerLimit = 10

// Client is a customer that can be attached to a sale.
type Client struct {
	ID             string    `json:"id"`
	DocumentType   string    `json:"documentType"`
	DocumentNumber string    `json:"documentNumber"`
	Name           string    `json:"name"`
	BusinessName   string    `json:"businessName,omitempty"`
	Address        string    `json:"address,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Status         string    `json:"status"`
	RegisteredAt   time.Time `json:"registeredAt"`
}

// DocumentLabel renders "TYPE: NUMBER".
func (c Client) DocumentLabel() string {
	return c.DocumentType + ": " + c.DocumentNumber
}

// ClientInput is the create/update payload.
type ClientInput struct {
	DocumentType   string `json:"documentType" validate:"required,oneof=DNI RUC CE"`
	DocumentNumber string `json:"documentNumber" validate:"required"`
	Name           string `json:"name" validate:"required,max=200"`
	BusinessName   string `json:"businessName" validate:"max=200"`
	Address        string `json:"address" validate:"max=300"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	Email          string `json:"email" validate:"omitempty,email"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive"`
}

var (
	dniPattern = regexp.MustCompile(`^\d{8}$`)
	rucPattern = regexp.MustCompile(`^\d{11}$`)
	cePattern  = regexp.MustCompile(`^[A-Za-z0-9]{6,12}$`)
)

// documentRule checks the document number against its type.
func documentRule(sl validator.StructLevel) {
	in := sl.Current().Interface().(ClientInput)
	number := strings.TrimSpace(in.DocumentNumber)
	if number == "" {
		return
	}
	var ok bool
	switch in.DocumentType {
	case DocDNI:
		ok = dniPattern.MatchString(number)
	case DocRUC:
		ok = rucPattern.MatchString(number)
	case DocCE:
		ok = cePattern.MatchString(number)
	default:
		return
	}
	if !ok {
		sl.ReportError(in.DocumentNumber, "DocumentNumber", "DocumentNumber", strings.ToLower(in.DocumentType), "")
	}
}

func (in ClientInput) apply(c Client) Client {
	c.DocumentType = in.DocumentType
	c.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	c.Name = strings.TrimSpace(in.Name)
	c.BusinessName = strings.TrimSpace(in.BusinessName)
	c.Address = strings.TrimSpace(in.Address)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Status = in.Status
	if c.Status == "" {
		c.Status = StatusActive
	}
	return c
}

// Query filters the client list. Field restricts the term to "name",
// "document" or "email"; empty matches any of them.
type Query struct {
	Term         string
	Field        string
	DocumentType string
	Status       string
}

func (q Query) match(c Client) bool {
	if q.DocumentType != "" && c.DocumentType != q.DocumentType {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Term))
	if term == "" {
		return true
	}
	byName := strings.Contains(strings.ToLower(c.Name), term)
	byDoc := strings.Contains(c.DocumentNumber, term)
	byEmail := strings.Contains(strings.ToLower(c.Email), term)
	switch q.Field {
	case "name":
		return byName
	case "document":
		return byDoc
	case "email":
		return byEmail
	default:
		return byName || byDoc || byEmail
	}
}
