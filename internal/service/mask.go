package service

import "strings"

// maskRecipient hides most of a guardian address before it reaches the logs.
// Emails keep the first and last letter of the local part; phone numbers keep
// the last three digits.
func maskRecipient(recipient string) string {
	recipient = strings.TrimSpace(strings.ToLower(recipient))
	if recipient == "" {
		return ""
	}

	if !strings.Contains(recipient, "@") {
		if len(recipient) <= 3 {
			return "***"
		}
		return strings.Repeat("*", len(recipient)-3) + recipient[len(recipient)-3:]
	}

	parts := strings.Split(recipient, "@")
	if len(parts) != 2 || parts[0] == "" {
		return "***"
	}
	local, domain := parts[0], parts[1]
	if len(local) <= 2 {
		local = local[:1] + "***"
	} else {
		local = local[:1] + "***" + local[len(local)-1:]
	}
	return local + "@" + domain
}
