package models

// Message is one templated message slot: free text plus referenced image
// identifiers. Image identifiers resolve through the pass's asset map.
type Message struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// ComboSpec describes one bundle to derive from a product: a name, the
// bundle unit price, and how many units of the product it references.
type ComboSpec struct {
	Name     string  `json:"combo_name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Product is one catalog item for a single reconciliation pass.
// It is constructed fresh every pass from the product source, immutable
// during the pass, and discarded afterwards; only its fingerprint persists.
type Product struct {
	// PageID routes messaging-platform calls for this product.
	PageID string `json:"page_id"`
	// Code is the unique business key. It can change across time; a code
	// change with an unchanged fingerprint is a rename.
	Code string `json:"code"`
	// Images lists source image identifiers (one per color, by convention).
	Images []string `json:"images"`
	// Colors and Sizes span the POS variant matrix.
	Colors []string `json:"colors"`
	Sizes  []string `json:"sizes"`
	// Price is the listed retail price.
	Price float64 `json:"price"`
	// Type is the product category label.
	Type string `json:"type"`
	// Material is the free-text material description.
	Material string `json:"material"`

	// PriceQuote is the price-quote quick-reply template.
	PriceQuote []Message `json:"price_quote"`
	// Message1B..MessageLD are the shortcut-category templates.
	Message1B []Message `json:"message_1b"`
	Message2B []Message `json:"message_2b"`
	Message3B []Message `json:"message_3b"`
	Message4B []Message `json:"message_4b"`
	MessageCL []Message `json:"message_cl"`
	MessageLD []Message `json:"message_ld"`

	// POSCode, POSName and POSPrice describe the POS-side product.
	POSCode  string  `json:"pos_code"`
	POSName  string  `json:"pos_name"`
	POSPrice float64 `json:"pos_price"`

	// Combos lists bundles to create when the product is new or renamed.
	Combos []ComboSpec `json:"combos"`
}

// ImageDims carries pixel dimensions of an uploaded asset.
type ImageDims struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UploadedAsset is the messaging platform's handle for one uploaded image.
// Cached per pass, keyed by the source image identifier, so identical
// images referenced by multiple products upload once.
type UploadedAsset struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	PreviewURL string    `json:"preview_url"`
	Name       string    `json:"name"`
	Dims       ImageDims `json:"image_data"`
}

// Photo is one embedded photo reference inside a quick-reply message.
type Photo struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	PreviewURL string    `json:"preview_url"`
	Name       string    `json:"name"`
	Dims       ImageDims `json:"image_data"`
}

// ReplyMessage is one message inside a quick-reply template entry.
type ReplyMessage struct {
	Message string  `json:"message"`
	Photos  []Photo `json:"photos"`
}

// QuickReply is one entry of the platform's quick-reply template set.
type QuickReply struct {
	Shortcut string         `json:"shortcut"`
	Code     string         `json:"code"`
	Messages []ReplyMessage `json:"messages"`
}
