package userapi

// User is a record held by the remote user service. It is a plain value:
// copying a User copies every field, nested structs included.
type User struct {
	// ID is assigned by the server. Zero means "not yet created" and is
	// omitted from request bodies.
	ID      int     `json:"id,omitempty"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Website string  `json:"website"`
	Address Address `json:"address"`
	Company Company `json:"company"`
}

// Address is the postal part of a User.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// Company names the organisation a User works for.
type Company struct {
	Name string `json:"name"`
}

// IsNew reports whether u has not been assigned a server id yet.
func (u User) IsNew() bool {
	return u.ID == 0
}
