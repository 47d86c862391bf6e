package billing

import "encoding/json"

// EncodeItems serializes an ordered item list for the receipts items column.
func EncodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// DecodeItems deserializes an item list, preserving order.
func DecodeItems(data []byte) ([]LineItem, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
