package oauth2

// Claims is a verified ID-token payload, claim name to value.
type Claims map[string]any

// Subject returns the "sub" claim, or the empty string when it is missing or
// not a string.
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// String returns a claim coerced to string, or "" when absent.
func (c Claims) String(name string) string {
	v, _ := c[name].(string)
	return v
}

// Profile is the provider's userinfo response, the fallback identity source
// when no ID token was issued.
type Profile struct {
	ID         string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}
