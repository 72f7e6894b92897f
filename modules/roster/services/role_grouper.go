package services

import "github.com/iota-uz/roster-import/modules/roster/domain/roster"

// GroupByRole partitions a batch into one bucket per distinct role value.
// The role field is already lowercased by the reader; the empty string is a
// valid key. No bucket is created without users, and per-bucket order
// follows input order.
func GroupByRole(batch []roster.UserRecord) map[string]*roster.RoleBucket {
	buckets := make(map[string]*roster.RoleBucket)
	for _, rec := range batch {
		bucket, ok := buckets[rec.Role]
		if !ok {
			bucket = &roster.RoleBucket{Role: rec.Role}
			buckets[rec.Role] = bucket
		}
		bucket.UsersToAdd = append(bucket.UsersToAdd, rec)
	}
	return buckets
}
