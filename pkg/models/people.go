package models

import (
	"net/mail"
	"strings"
)

// User is a staff or customer account.
type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Role        string `json:"role,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func (u User) RecordID() string { return formatID(u.ID) }

// Validate requires a name and a well-formed email.
func (u User) Validate() error {
	c := newChecker("user")
	c.required("firstName", u.FirstName)
	c.required("lastName", u.LastName)
	checkEmail(c, u.Email)
	return c.result()
}

// StaffShift is one scheduled shift.
type StaffShift struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	ShiftDate string `json:"shiftDate,omitempty"`
	User      string `json:"user,omitempty"`
}

func (s StaffShift) RecordID() string { return formatID(s.ID) }

// Validate requires the staff member and a shift window that does not run backwards.
func (s StaffShift) Validate() error {
	c := newChecker("staff shift")
	if s.UserID <= 0 {
		c.fail("userId", "is required")
	}
	start, startOK := ParseDate(s.StartTime)
	end, endOK := ParseDate(s.EndTime)
	if startOK && endOK && end.Before(start) {
		c.fail("endTime", "must not be before startTime")
	}
	return c.result()
}

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate requires both fields.
func (c Credentials) Validate() error {
	ck := newChecker("credentials")
	ck.required("email", c.Email)
	ck.required("password", c.Password)
	return ck.result()
}

// Registration is posted to the register endpoint; every field is mandatory.
type Registration struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

// Validate requires all fields.
func (r Registration) Validate() error {
	c := newChecker("registration")
	c.required("firstName", r.FirstName)
	c.required("lastName", r.LastName)
	checkEmail(c, r.Email)
	c.required("password", r.Password)
	c.required("phoneNumber", r.PhoneNumber)
	c.required("role", r.Role)
	return c.result()
}

// LoginResponse is what the login endpoint returns.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func checkEmail(c *checker, email string) {
	if strings.TrimSpace(email) == "" {
		c.fail("email", "is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		c.fail("email", "is not a valid address")
	}
}
