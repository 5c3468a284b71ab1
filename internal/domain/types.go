// Package domain defines the content entities shared by the export bundle,
// the destination store, and the merge engine.
package domain

// PostType discriminates the polymorphic post record.
type PostType string

const (
	PostTypePost       PostType = "post"
	PostTypePage       PostType = "page"
	PostTypeAttachment PostType = "attachment"
)

// Comment approval states as stored ("1", "0", "spam").
const (
	CommentApproved = "1"
	CommentPending  = "0"
)

// User is an exported user record. Email is the identity key for merging.
type User struct {
	ID          int64    `json:"ID"`
	Login       string   `json:"user_login"`
	Email       string   `json:"user_email"`
	Nicename    string   `json:"user_nicename"`
	DisplayName string   `json:"display_name"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Registered  string   `json:"user_registered"`
	Roles       []string `json:"role"`
	Meta        UserMeta `json:"meta,omitempty"`
}

// Term is an exported taxonomy term. (Slug, Taxonomy) is the identity key.
// Parent is a source term ID; zero means root.
type Term struct {
	ID          int64  `json:"term_id"`
	Taxonomy    string `json:"taxonomy"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int64  `json:"parent"`
	Description string `json:"description"`
	Meta        Meta   `json:"meta,omitempty"`
}

// TermRef identifies a term associated with a post.
type TermRef struct {
	ID   int64  `json:"term_id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Post is an exported post, page, or attachment. (Slug, Type) is the
// identity key. Author and Parent are source IDs; zero Parent means none.
type Post struct {
	ID            int64                `json:"ID"`
	Type          PostType             `json:"post_type"`
	Title         string               `json:"post_title"`
	Content       string               `json:"post_content"`
	Excerpt       string               `json:"post_excerpt"`
	Status        string               `json:"post_status"`
	Slug          string               `json:"post_name"`
	Author        int64                `json:"post_author"`
	Parent        int64                `json:"post_parent"`
	Date          string               `json:"post_date"`
	DateGMT       string               `json:"post_date_gmt"`
	CommentStatus string               `json:"comment_status"`
	PingStatus    string               `json:"ping_status"`
	MenuOrder     int                  `json:"menu_order"`
	MimeType      string               `json:"post_mime_type"`
	Terms         map[string][]TermRef `json:"terms,omitempty"`
	Meta          Meta                 `json:"meta,omitempty"`
}

// Comment is an exported comment. PostID is required; Parent and UserID are
// optional source IDs with zero meaning none/anonymous.
type Comment struct {
	ID          int64  `json:"comment_ID"`
	PostID      int64  `json:"comment_post_ID"`
	Parent      int64  `json:"comment_parent"`
	UserID      int64  `json:"user_id"`
	Author      string `json:"comment_author"`
	AuthorEmail string `json:"comment_author_email"`
	AuthorURL   string `json:"comment_author_url"`
	AuthorIP    string `json:"comment_author_IP"`
	Date        string `json:"comment_date"`
	DateGMT     string `json:"comment_date_gmt"`
	Content     string `json:"comment_content"`
	Karma       int    `json:"comment_karma"`
	Approved    string `json:"comment_approved"`
	Agent       string `json:"comment_agent"`
	Type        string `json:"comment_type"`
	Meta        Meta   `json:"meta,omitempty"`
}

// FirstRole returns the user's primary role, or the fallback when the
// exported role list is empty.
func (u *User) FirstRole(fallback string) string {
	if len(u.Roles) > 0 && u.Roles[0] != "" {
		return u.Roles[0]
	}
	return fallback
}
