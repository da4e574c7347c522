package booking

// Caller identifies who issues an engine call.  It replaces any notion of a
// process-wide logged-in user: handlers build one per request from the
// verified token.
type Caller struct {
	UserID    uint64
	Privilege int
}

// CanManage reports whether c may inspect or modify an account holding
// privilege.  Only strictly lower privileges can be managed.
func (c Caller) CanManage(privilege int) bool { return c.Privilege > privilege }
