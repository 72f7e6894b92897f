package roster

// UserRecord is one normalized roster row. Produced by the csv reader and
// immutable afterwards. Role is lowercased; every other field is passed
// through exactly as it appeared in the file, empty when absent.
type UserRecord struct {
	LastName     string
	FirstName    string
	UserID       string
	Email        string
	Organisation string
	Role         string
	// TargetGroupCode is an optional extended attribute some deployments
	// supply as a seventh column. Empty unless present.
	TargetGroupCode string
}

// RoleBucket groups the records sharing one normalized role value. Order of
// UsersToAdd follows input order.
type RoleBucket struct {
	Role       string
	UsersToAdd []UserRecord
}
