package loadtest

import (
	"strings"

	"github.com/google/uuid"
)

const defaultDomain = "mergington.edu"

// generateStudents returns n unique student emails.
func generateStudents(n int, domain string) []string {
	if domain == "" {
		domain = defaultDomain
	}
	emails := make([]string, n)
	for i := range emails {
		emails[i] = "student-" + strings.ReplaceAll(uuid.NewString(), "-", "") + "@" + domain
	}
	return emails
}
