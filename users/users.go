package users

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is the sole authorization signal carried by a profile
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleEmployer  Role = "EMPLOYER"
	RoleCandidate Role = "CANDIDATE"
)

// Roles decodes either ["ADMIN"] or [{"name":"ADMIN"}] as sent by the backend.
type Roles []Role

func (r *Roles) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("roles: %w", err)
	}
	roles := make(Roles, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				return fmt.Errorf("roles: unsupported element %s", string(item))
			}
			name = obj.Name
		}
		if name = strings.TrimSpace(name); name != "" {
			roles = append(roles, Role(strings.ToUpper(strings.TrimPrefix(name, "ROLE_"))))
		}
	}
	*r = roles
	return nil
}

// Profile is the optional personal data embedded in a UserProfile
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Complete reports whether both names are present.
func (p *Profile) Complete() bool {
	return p != nil && strings.TrimSpace(p.FirstName) != "" && strings.TrimSpace(p.LastName) != ""
}

type UserProfile struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Roles    Roles    `json:"roles"`
	Profile  *Profile `json:"profile,omitempty"`
}

func (u *UserProfile) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole returns true if the user holds at least one of roles
func (u *UserProfile) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// DisplayName prefers the embedded names, falling back to the username
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Profile.Complete() {
		return u.Profile.FirstName + " " + u.Profile.LastName
	}
	return u.Username
}

// Credentials is the sign-in form payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// dateLayout is the backend's dd-MM-yyyy date format
const dateLayout = "02-01-2006"

// Date is a calendar date serialised as dd-MM-yyyy.
type Date time.Time

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date must be dd-MM-yyyy: %w", err)
	}
	return Date(t), nil
}

func (d Date) String() string {
	if time.Time(d).IsZero() {
		return ""
	}
	return time.Time(d).Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Registration is the sign-up payload. Registering never authenticates.
type Registration struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth Date   `json:"dateOfBirth"`
}
