package domain

import (
	"fmt"
	"strings"
)

// ValidatePostType validates a post type.
func ValidatePostType(t PostType) error {
	switch t {
	case PostTypePost, PostTypePage, PostTypeAttachment:
		return nil
	default:
		return fmt.Errorf("invalid post type %q: must be one of: post, page, attachment", t)
	}
}

// ValidateEmail performs the minimal shape check the store relies on.
func ValidateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email address: %q", email)
	}
	return nil
}

// ValidatePostStatus validates a post publication status.
func ValidatePostStatus(status string) error {
	switch status {
	case "publish", "draft", "pending", "private", "future", "trash", "inherit":
		return nil
	default:
		return fmt.Errorf("invalid post status %q", status)
	}
}
