// Package engagement implements the comment-thread and rating operations
// for a single movie as pure transformations: every function takes the
// current state, returns the next state, and leaves its input untouched.
// Persistence and per-movie serialization are the store's job.
package engagement

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// Comment is a single flat comment row. ParentID == nil means top-level.
type Comment struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	ParentID  *string    `json:"parent_id,omitempty"`
	Body      string     `json:"body"`
	IsEdited  bool       `json:"is_edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	Likes     []string   `json:"likes"`
	Dislikes  []string   `json:"dislikes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CommentNode is a comment with its replies nested under it. Nodes are
// derived on every read and never persisted.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// BuildThread converts the flat comment list into a forest of threads.
// Two passes: index every comment into a fresh node, then link each node
// under its parent. Ordering among roots and within each reply list is
// the input order. A comment whose parent id does not resolve (deleted
// parent, bad reference) is kept as a root rather than dropped.
func BuildThread(comments []Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	ordered := make([]*CommentNode, 0, len(comments))
	for _, c := range comments {
		n := &CommentNode{Comment: c, Replies: []*CommentNode{}}
		nodes[c.ID] = n
		ordered = append(ordered, n)
	}

	roots := make([]*CommentNode, 0, len(ordered))
	for _, n := range ordered {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*n.ParentID]
		if !ok || parent == n {
			// dangling or self reference: surface as a root
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}
	return roots
}

// DescendantIDs returns rootID plus every comment id transitively parented
// by it. Traversal uses an explicit stack with a visited guard, so it
// terminates even if a corrupted store contains a parent cycle.
func DescendantIDs(comments []Comment, rootID string) map[string]struct{} {
	children := make(map[string][]string, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := make(map[string]struct{})
	stack := []string{rootID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := ids[cur]; seen {
			continue
		}
		ids[cur] = struct{}{}
		stack = append(stack, children[cur]...)
	}
	return ids
}

// Add appends a new comment. The caller supplies ID and CreatedAt; Add
// normalizes the body and validates it is non-empty after trimming.
// A reply whose parent is not in the list fails with ErrNotFound.
func Add(comments []Comment, c Comment) ([]Comment, Comment, error) {
	c.Body = strings.TrimSpace(c.Body)
	if c.Body == "" {
		return nil, Comment{}, ErrInvalidInput
	}
	if c.ParentID != nil && indexOf(comments, *c.ParentID) < 0 {
		return nil, Comment{}, ErrNotFound
	}
	if c.Likes == nil {
		c.Likes = []string{}
	}
	if c.Dislikes == nil {
		c.Dislikes = []string{}
	}
	c.UpdatedAt = c.CreatedAt

	out := make([]Comment, len(comments), len(comments)+1)
	copy(out, comments)
	return append(out, c), c, nil
}

// Edit replaces a comment's body and marks it edited. Only the author or
// an admin may edit.
func Edit(comments []Comment, commentID, callerID string, admin bool, body string, now time.Time) ([]Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrInvalidInput
	}
	idx := indexOf(comments, commentID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	if comments[idx].UserID != callerID && !admin {
		return nil, ErrForbidden
	}

	out := append([]Comment(nil), comments...)
	edited := now
	out[idx].Body = body
	out[idx].IsEdited = true
	out[idx].EditedAt = &edited
	out[idx].UpdatedAt = now
	return out, nil
}

// Delete removes a comment and every reply transitively rooted at it,
// preserving the relative order of the remainder. Cascade is the only
// supported deletion granularity. Returns how many comments were removed.
func Delete(comments []Comment, commentID, callerID string, admin bool) ([]Comment, int, error) {
	idx := indexOf(comments, commentID)
	if idx < 0 {
		return nil, 0, ErrNotFound
	}
	if comments[idx].UserID != callerID && !admin {
		return nil, 0, ErrForbidden
	}

	doomed := DescendantIDs(comments, commentID)
	out := make([]Comment, 0, len(comments)-len(doomed))
	for _, c := range comments {
		if _, gone := doomed[c.ID]; !gone {
			out = append(out, c)
		}
	}
	return out, len(comments) - len(out), nil
}

func indexOf(comments []Comment, id string) int {
	for i := range comments {
		if comments[i].ID == id {
			return i
		}
	}
	return -1
}
