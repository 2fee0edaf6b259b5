package domain

// PriceRecord is the latest publication for a pair. Its three fields are always written together.
type PriceRecord struct {
	Pair      Pair
	Price     int64
	Timestamp uint64
	Provider  Address
}

// FieldTag names one entry of a record in the state store.
type FieldTag string

const (
	FieldPrice    FieldTag = "price"
	FieldTime     FieldTag = "time"
	FieldProvider FieldTag = "provider"
)

// Key addresses a single stored entry: (field-tag, pair).
type Key struct {
	Tag  FieldTag
	Pair Pair
}

func PriceKey(p Pair) Key    { return Key{Tag: FieldPrice, Pair: p} }
func TimeKey(p Pair) Key     { return Key{Tag: FieldTime, Pair: p} }
func ProviderKey(p Pair) Key { return Key{Tag: FieldProvider, Pair: p} }

func (k Key) String() string { return string(k.Tag) + ":" + string(k.Pair) }
