package mongoxtest

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// toD normalizes any document-shaped value (bson.M, bson.D, model struct)
// into a bson.D by a marshal round trip, so stored documents, filters and
// updates all carry the same value types regardless of how they were built.
func toD(v interface{}) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mongoxtest: marshaling %T: %w", v, err)
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("mongoxtest: unmarshaling %T: %w", v, err)
	}
	return d, nil
}

// lookup returns the value for a top-level key.
func lookup(d bson.D, key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// matches reports whether doc satisfies a flat equality filter.
func matches(doc, filter bson.D) bool {
	for _, e := range filter {
		v, ok := lookup(doc, e.Key)
		if !ok || !valuesEqual(v, e.Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// applySet sets key (possibly a dotted path) to val, creating intermediate
// documents as needed, and returns the updated document.
func applySet(doc bson.D, key string, val interface{}) bson.D {
	head, rest, nested := strings.Cut(key, ".")
	for i, e := range doc {
		if e.Key != head {
			continue
		}
		if !nested {
			doc[i].Value = val
			return doc
		}
		sub, _ := e.Value.(bson.D)
		doc[i].Value = applySet(sub, rest, val)
		return doc
	}
	if !nested {
		return append(doc, bson.E{Key: head, Value: val})
	}
	return append(doc, bson.E{Key: head, Value: applySet(bson.D{}, rest, val)})
}

func upsertRequested(opts []*options.UpdateOptions) bool {
	for _, o := range opts {
		if o != nil && o.Upsert != nil && *o.Upsert {
			return true
		}
	}
	return false
}

// groupStage supports grouping on a "$field" reference with $sum
// accumulators, which is the shape the ranking pipeline uses.
func groupStage(docs []bson.D, specRaw interface{}) ([]bson.D, error) {
	spec, ok := specRaw.(bson.D)
	if !ok {
		return nil, fmt.Errorf("mongoxtest: $group spec must be a document, got %T", specRaw)
	}
	idRaw, ok := lookup(spec, "_id")
	if !ok {
		return nil, fmt.Errorf("mongoxtest: $group without _id")
	}
	idRef, ok := idRaw.(string)
	if !ok || !strings.HasPrefix(idRef, "$") {
		return nil, fmt.Errorf("mongoxtest: $group _id must be a $field reference, got %v", idRaw)
	}
	field := strings.TrimPrefix(idRef, "$")

	type accumulator struct {
		name string
		step int64
	}
	var accs []accumulator
	for _, e := range spec {
		if e.Key == "_id" {
			continue
		}
		acc, ok := e.Value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("mongoxtest: accumulator %q must be a document", e.Key)
		}
		sumRaw, ok := lookup(acc, "$sum")
		if !ok {
			return nil, fmt.Errorf("mongoxtest: only $sum accumulators are supported in %q", e.Key)
		}
		step, ok := toFloat(sumRaw)
		if !ok {
			return nil, fmt.Errorf("mongoxtest: $sum operand must be numeric in %q", e.Key)
		}
		accs = append(accs, accumulator{name: e.Key, step: int64(step)})
	}

	var order []interface{}
	totals := make(map[interface{}][]int64)
	for _, d := range docs {
		key, ok := lookup(d, field)
		if !ok {
			key = nil
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
			totals[key] = make([]int64, len(accs))
		}
		for i, a := range accs {
			totals[key][i] += a.step
		}
	}

	out := make([]bson.D, 0, len(order))
	for _, key := range order {
		g := bson.D{{Key: "_id", Value: key}}
		for i, a := range accs {
			g = append(g, bson.E{Key: a.name, Value: totals[key][i]})
		}
		out = append(out, g)
	}
	return out, nil
}

func sortStage(docs []bson.D, specRaw interface{}) ([]bson.D, error) {
	spec, ok := specRaw.(bson.D)
	if !ok {
		return nil, fmt.Errorf("mongoxtest: $sort spec must be a document, got %T", specRaw)
	}
	sorted := make([]bson.D, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		for _, e := range spec {
			dir, ok := toFloat(e.Value)
			if !ok {
				dir = 1
			}
			a, _ := lookup(sorted[i], e.Key)
			b, _ := lookup(sorted[j], e.Key)
			switch c := compare(a, b); {
			case c < 0:
				return dir > 0
			case c > 0:
				return dir < 0
			}
		}
		return false
	})
	return sorted, nil
}

func limitStage(docs []bson.D, specRaw interface{}) ([]bson.D, error) {
	n, ok := toFloat(specRaw)
	if !ok {
		return nil, fmt.Errorf("mongoxtest: $limit operand must be numeric, got %T", specRaw)
	}
	limit := int(n)
	if limit < len(docs) {
		return docs[:limit], nil
	}
	return docs, nil
}

func compare(a, b interface{}) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	if ao, aok := a.(primitive.ObjectID); aok {
		if bo, bok := b.(primitive.ObjectID); bok {
			return bytes.Compare(ao[:], bo[:])
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
