package payments

import (
	"encoding/json"
	"fmt"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
)

const (
	// ProviderName tags every transaction row. Together with the
	// provider's intent id it forms the webhook dedup key.
	ProviderName = "stripe"

	// MetadataVersion is bumped whenever the metadata shape changes so
	// the webhook side fails loudly on drift instead of guessing.
	MetadataVersion = "1"

	orderTypePlacement = "placement"
)

const (
	mdKeyVersion   = "schema_version"
	mdKeyUserID    = "user_id"
	mdKeyEmail     = "email"
	mdKeyOrderID   = "order_id"
	mdKeyOrderType = "order_type"
	mdKeyCart      = "cart"
)

// IntentMetadata is everything stashed on the provider's payment
// intent at creation time. The webhook has no session context, so this
// must be sufficient on its own to locate the order.
type IntentMetadata struct {
	Version   string
	UserID    string
	Email     string
	OrderID   string
	OrderType string
	Items     []models.CartItem
}

func (m IntentMetadata) Encode() (map[string]string, error) {
	cartJSON, err := json.Marshal(m.Items)
	if err != nil {
		return nil, fmt.Errorf("serialize cart: %w", err)
	}
	return map[string]string{
		mdKeyVersion:   m.Version,
		mdKeyUserID:    m.UserID,
		mdKeyEmail:     m.Email,
		mdKeyOrderID:   m.OrderID,
		mdKeyOrderType: m.OrderType,
		mdKeyCart:      string(cartJSON),
	}, nil
}

// DecodeMetadata validates the shape carried back by a webhook event.
// Every failure here is permanent: retrying delivery cannot repair
// metadata that was written wrong at intent time.
func DecodeMetadata(md map[string]string) (*IntentMetadata, error) {
	if md == nil {
		return nil, fmt.Errorf("%w: no metadata on intent", ErrMetadataInvalid)
	}
	if v := md[mdKeyVersion]; v != MetadataVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %q", ErrMetadataInvalid, v)
	}
	out := &IntentMetadata{
		Version:   md[mdKeyVersion],
		UserID:    md[mdKeyUserID],
		Email:     md[mdKeyEmail],
		OrderID:   md[mdKeyOrderID],
		OrderType: md[mdKeyOrderType],
	}
	if out.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrMetadataInvalid)
	}
	if out.OrderID == "" {
		return nil, fmt.Errorf("%w: missing order_id", ErrMetadataInvalid)
	}
	if err := json.Unmarshal([]byte(md[mdKeyCart]), &out.Items); err != nil {
		return nil, fmt.Errorf("%w: unreadable cart: %v", ErrMetadataInvalid, err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", ErrMetadataInvalid)
	}
	return out, nil
}
