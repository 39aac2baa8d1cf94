package engagement

// ReactionKind is the reaction a user can hold on a comment.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// ReactionCounts is the resulting tally after a reaction is applied.
type ReactionCounts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// React records userID's reaction on a comment. A user holds at most one
// reaction at a time: the user is first removed from both sets, then
// inserted into the set matching kind. Re-applying the same kind leaves
// the state unchanged; applying the opposite kind swaps it. There is no
// separate toggle-off for reactions.
func React(comments []Comment, commentID, userID string, kind ReactionKind) ([]Comment, ReactionCounts, error) {
	if kind != ReactionLike && kind != ReactionDislike {
		return nil, ReactionCounts{}, ErrInvalidInput
	}
	idx := indexOf(comments, commentID)
	if idx < 0 {
		return nil, ReactionCounts{}, ErrNotFound
	}

	out := append([]Comment(nil), comments...)
	c := &out[idx]
	c.Likes = withoutID(c.Likes, userID)
	c.Dislikes = withoutID(c.Dislikes, userID)
	if kind == ReactionLike {
		c.Likes = append(c.Likes, userID)
	} else {
		c.Dislikes = append(c.Dislikes, userID)
	}

	return out, ReactionCounts{Likes: len(c.Likes), Dislikes: len(c.Dislikes)}, nil
}

// withoutID returns a fresh slice with id filtered out. Always copies so
// the caller never aliases the input's backing array.
func withoutID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
