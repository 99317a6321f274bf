package sorted

import "github.com/azmodb/tupledb/tuple"

// ScanTuples returns the slice of items, sorted ascending by
// CompareTuple, matching args. It computes [start, end) via binary
// search on the bounds (disambiguating gt/gte and lt/lte via
// found/closest) and slices, then applies Limit and Reverse.
func ScanTuples(items []tuple.Tuple, args tuple.ScanArgs) []tuple.Tuple {
	args = args.Normalize()
	start, end := tupleBounds(items, args)
	if start >= end {
		return nil
	}

	window := items[start:end]
	out := make([]tuple.Tuple, len(window))
	copy(out, window)
	if args.Reverse {
		reverseTuples(out)
	}
	if args.Limit > 0 && args.Limit < len(out) {
		out = out[:args.Limit]
	}
	return out
}

func tupleBounds(items []tuple.Tuple, args tuple.ScanArgs) (start, end int) {
	start = 0
	switch {
	case args.Gte != nil:
		start = SearchTuples(items, args.Gte).Index
	case args.Gt != nil:
		res := SearchTuples(items, args.Gt)
		start = res.Index
		if res.Found {
			start++
		}
	}

	end = len(items)
	switch {
	case args.Lte != nil:
		res := SearchTuples(items, args.Lte)
		end = res.Index
		if res.Found {
			end++
		}
	case args.Lt != nil:
		end = SearchTuples(items, args.Lt).Index
	}
	return start, end
}

// ScanPairs returns the slice of (tuple, value) pairs, sorted ascending
// by key, matching args.
func ScanPairs[V any](items []KV[V], args tuple.ScanArgs) []KV[V] {
	args = args.Normalize()
	start, end := pairBounds(items, args)
	if start >= end {
		return nil
	}

	window := items[start:end]
	out := make([]KV[V], len(window))
	copy(out, window)
	if args.Reverse {
		reversePairs(out)
	}
	if args.Limit > 0 && args.Limit < len(out) {
		out = out[:args.Limit]
	}
	return out
}

func pairBounds[V any](items []KV[V], args tuple.ScanArgs) (start, end int) {
	start = 0
	switch {
	case args.Gte != nil:
		start = SearchPairs(items, args.Gte).Index
	case args.Gt != nil:
		res := SearchPairs(items, args.Gt)
		start = res.Index
		if res.Found {
			start++
		}
	}

	end = len(items)
	switch {
	case args.Lte != nil:
		res := SearchPairs(items, args.Lte)
		end = res.Index
		if res.Found {
			end++
		}
	case args.Lt != nil:
		end = SearchPairs(items, args.Lt).Index
	}
	return start, end
}

func reverseTuples(s []tuple.Tuple) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reversePairs[V any](s []KV[V]) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
