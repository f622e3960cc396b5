package billing

import (
	"fmt"
	"strings"

	"github.com/s/courseStore/internal/apperr"
)

// Checkout session metadata keys.
const (
	MetaUserID       = "userId"
	MetaProductID    = "productId"
	MetaAllCourseIDs = "allCourseIds"
	MetaNewCourseIDs = "newCourseIds"
)

// Stripe rejects metadata values longer than this.
const maxMetadataValue = 500

const (
	listSeparator = ','
	listEscape    = '\\'
)

// EncodeIDList joins ids with ',' and escapes ',' and '\' with a leading '\'.
func EncodeIDList(ids []string) (string, error) {
	var b strings.Builder
	for i, id := range ids {
		if id == "" {
			return "", fmt.Errorf("id list: empty id at position %d", i)
		}
		if i > 0 {
			b.WriteByte(listSeparator)
		}
		for j := 0; j < len(id); j++ {
			c := id[j]
			if c == listSeparator || c == listEscape {
				b.WriteByte(listEscape)
			}
			b.WriteByte(c)
		}
	}
	if b.Len() > maxMetadataValue {
		return "", fmt.Errorf("id list: encoded length %d exceeds %d", b.Len(), maxMetadataValue)
	}
	return b.String(), nil
}

// DecodeIDList is the inverse of EncodeIDList. The empty string decodes to
// an empty list; empty ids and dangling or unknown escapes are rejected.
func DecodeIDList(s string) ([]string, error) {
	if s == "" {
		return []string{}, nil
	}
	if len(s) > maxMetadataValue {
		return nil, fmt.Errorf("id list: length %d exceeds %d", len(s), maxMetadataValue)
	}

	var ids []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case listEscape:
			if i+1 >= len(s) {
				return nil, fmt.Errorf("id list: dangling escape at %d", i)
			}
			next := s[i+1]
			if next != listSeparator && next != listEscape {
				return nil, fmt.Errorf("id list: invalid escape %q at %d", next, i)
			}
			cur.WriteByte(next)
			i++
		case listSeparator:
			if cur.Len() == 0 {
				return nil, fmt.Errorf("id list: empty id before position %d", i)
			}
			ids = append(ids, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() == 0 {
		return nil, fmt.Errorf("id list: trailing separator")
	}
	return append(ids, cur.String()), nil
}

// CheckoutMetadata is what a checkout session carries for reconciliation.
type CheckoutMetadata struct {
	UserID    string
	ProductID string

	// Bundle checkouts only.
	Bundle          bool
	AllCourseIDs    []string
	NewCourseIDs    []string
	HasNewCourseIDs bool
}

func (m CheckoutMetadata) Encode() (map[string]string, error) {
	if m.UserID == "" || m.ProductID == "" {
		return nil, fmt.Errorf("checkout metadata: userId and productId are required")
	}
	out := map[string]string{
		MetaUserID:    m.UserID,
		MetaProductID: m.ProductID,
	}
	if !m.Bundle {
		return out, nil
	}

	all, err := EncodeIDList(m.AllCourseIDs)
	if err != nil {
		return nil, fmt.Errorf("checkout metadata %s: %w", MetaAllCourseIDs, err)
	}
	fresh, err := EncodeIDList(m.NewCourseIDs)
	if err != nil {
		return nil, fmt.Errorf("checkout metadata %s: %w", MetaNewCourseIDs, err)
	}
	out[MetaAllCourseIDs] = all
	out[MetaNewCourseIDs] = fresh
	return out, nil
}

// ParseCheckoutMetadata validates session metadata. Malformed input is a
// validation error.
func ParseCheckoutMetadata(md map[string]string) (CheckoutMetadata, error) {
	m := CheckoutMetadata{
		UserID:    md[MetaUserID],
		ProductID: md[MetaProductID],
	}
	if m.UserID == "" || m.ProductID == "" {
		return m, apperr.Validation("Session metadata is missing userId or productId")
	}

	all, ok := md[MetaAllCourseIDs]
	if !ok {
		return m, nil
	}
	ids, err := DecodeIDList(all)
	if err != nil {
		return m, apperr.Validation(fmt.Sprintf("Invalid %s metadata: %v", MetaAllCourseIDs, err))
	}
	m.Bundle = true
	m.AllCourseIDs = ids

	if fresh, ok := md[MetaNewCourseIDs]; ok {
		ids, err := DecodeIDList(fresh)
		if err != nil {
			return m, apperr.Validation(fmt.Sprintf("Invalid %s metadata: %v", MetaNewCourseIDs, err))
		}
		m.NewCourseIDs = ids
		m.HasNewCourseIDs = true
	}
	return m, nil
}
