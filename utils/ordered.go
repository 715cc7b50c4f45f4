package utils

import "github.com/elliotchance/orderedmap/v2"

// OrderedMapToArgs flattens an orderedmap into slog-style key/value arguments, keeping insertion order.
func OrderedMapToArgs(data *orderedmap.OrderedMap[string, any]) []any {
	if data == nil {
		return nil
	}
	args := make([]any, 0, data.Len()*2)
	for el := data.Front(); el != nil; el = el.Next() {
		args = append(args, el.Key, el.Value)
	}
	return args
}
