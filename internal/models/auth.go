package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload issued by the identity service.
// SchoolID scopes every record the caller may read or write.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	SchoolID   string   `json:"school_id"`
	Role       UserRole `json:"role"`
	Email      string   `json:"email"`
	FullName   string   `json:"full_name"`
	StudentIDs []string `json:"student_ids,omitempty"`
	jwt.RegisteredClaims
}

// CanViewStudent reports whether the caller may read the student's results.
// Parents and students are limited to the students listed in their token.
func (c *JWTClaims) CanViewStudent(studentID string) bool {
	if c == nil {
		return false
	}
	switch c.Role {
	case RoleParent, RoleStudent:
		for _, id := range c.StudentIDs {
			if id == studentID {
				return true
			}
		}
		return false
	default:
		return true
	}
}
