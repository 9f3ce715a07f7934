package googlefit

import (
	fitness "google.golang.org/api/fitness/v1"
)

const (
	StepCountDataType    = "com.google.step_count.delta"
	EstimatedStepsSource = "derived:com.google.step_count.delta:com.google.android.gms:estimated_steps"

	// DayMillis is the width of one aggregate bucket.
	DayMillis int64 = 24 * 60 * 60 * 1000
)

// BucketSteps returns the first integer value of the first point of the first
// dataset in the bucket. Any missing level yields 0.
func BucketSteps(b *fitness.AggregateBucket) int64 {
	if b == nil || len(b.Dataset) == 0 {
		return 0
	}
	ds := b.Dataset[0]
	if ds == nil || len(ds.Point) == 0 {
		return 0
	}
	p := ds.Point[0]
	if p == nil || len(p.Value) == 0 {
		return 0
	}
	v := p.Value[0]
	if v == nil {
		return 0
	}
	return v.IntVal
}

// FirstBucketSteps applies BucketSteps to the first bucket of the response.
func FirstBucketSteps(resp *fitness.AggregateResponse) int64 {
	if resp == nil || len(resp.Bucket) == 0 {
		return 0
	}
	return BucketSteps(resp.Bucket[0])
}
