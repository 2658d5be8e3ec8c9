package view

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/voltable/pkg/filter"
	"github.com/vanderheijden86/voltable/pkg/model"
)

// Bucket is the number of visible records in one category or value
type Bucket struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary describes one column over a view
type Summary struct {
	Column  string   `json:"column"`
	Visible int      `json:"visible"`
	Total   int      `json:"total"`
	Numeric int      `json:"numeric"` // values with a leading integer
	Mean    float64  `json:"mean"`
	Median  float64  `json:"median"`
	Buckets []Bucket `json:"buckets"`
}

// Summarize counts a column's values over the view. Category columns are
// bucketed by their category set (plus "other" for values that fit none);
// other columns by distinct value in first-seen order, blanks excluded.
func Summarize(v View, column string) Summary {
	s := Summary{Column: column, Visible: v.Len(), Total: v.Total}

	var nums []float64
	for _, r := range v.Records {
		if n, ok := model.ParseLeadingInt(r.Value(column)); ok {
			nums = append(nums, float64(n))
		}
	}
	s.Numeric = len(nums)
	if len(nums) > 0 {
		slices.Sort(nums)
		s.Mean = stat.Mean(nums, nil)
		s.Median = stat.Quantile(0.5, stat.Empirical, nums, nil)
	}

	spec, _ := v.Columns.Find(column)
	if set, ok := filter.Lookup(spec.Categories); ok && spec.Filter == model.FilterCategory {
		s.Buckets = categoryBuckets(v.Records, column, set)
	} else {
		s.Buckets = valueBuckets(v.Records, column)
	}
	return s
}

func categoryBuckets(records []*model.Record, column string, set filter.CategorySet) []Bucket {
	buckets := make([]Bucket, len(set))
	index := make(map[string]int, len(set))
	for i, c := range set {
		buckets[i] = Bucket{Value: c.Value, Label: c.Label}
		index[c.Value] = i
	}
	other := 0
	for _, r := range records {
		if i, ok := index[set.Classify(r.Value(column))]; ok {
			buckets[i].Count++
		} else {
			other++
		}
	}
	if other > 0 {
		buckets = append(buckets, Bucket{Value: "other", Label: "Other", Count: other})
	}
	return buckets
}

func valueBuckets(records []*model.Record, column string) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)
	for _, r := range records {
		v := strings.TrimSpace(r.Value(column))
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			buckets[i].Count++
			continue
		}
		index[v] = len(buckets)
		buckets = append(buckets, Bucket{Value: v, Label: v, Count: 1})
	}
	return buckets
}
