package engagement

import "testing"

func TestReact_Like(t *testing.T) {
	comments := flat([2]string{"1", ""})

	out, counts, err := React(comments, "1", "user-b", ReactionLike)
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if counts.Likes != 1 || counts.Dislikes != 0 {
		t.Fatalf("expected 1/0, got %d/%d", counts.Likes, counts.Dislikes)
	}
	if len(comments[0].Likes) != 0 {
		t.Fatal("input slice was mutated")
	}
	if len(out[0].Likes) != 1 || out[0].Likes[0] != "user-b" {
		t.Fatalf("expected user-b in likes, got %v", out[0].Likes)
	}
}

func TestReact_SameKindIsNoOp(t *testing.T) {
	comments := flat([2]string{"1", ""})
	comments, _, _ = React(comments, "1", "user-b", ReactionLike)
	comments, counts, err := React(comments, "1", "user-b", ReactionLike)
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if counts.Likes != 1 || counts.Dislikes != 0 {
		t.Fatalf("expected repeat like to stay 1/0, got %d/%d", counts.Likes, counts.Dislikes)
	}
	if len(comments[0].Likes) != 1 {
		t.Fatalf("expected exactly one like entry, got %v", comments[0].Likes)
	}
}

func TestReact_OppositeKindSwaps(t *testing.T) {
	comments := flat([2]string{"1", ""})
	comments, _, _ = React(comments, "1", "user-b", ReactionLike)
	comments, counts, err := React(comments, "1", "user-b", ReactionDislike)
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if counts.Likes != 0 || counts.Dislikes != 1 {
		t.Fatalf("expected swap to 0/1, got %d/%d", counts.Likes, counts.Dislikes)
	}
}

func TestReact_Exclusivity(t *testing.T) {
	comments := flat([2]string{"1", ""})
	seq := []ReactionKind{ReactionLike, ReactionDislike, ReactionDislike, ReactionLike, ReactionDislike}
	for _, kind := range seq {
		var err error
		comments, _, err = React(comments, "1", "user-b", kind)
		if err != nil {
			t.Fatalf("react %s: %v", kind, err)
		}
		inLikes, inDislikes := 0, 0
		for _, u := range comments[0].Likes {
			if u == "user-b" {
				inLikes++
			}
		}
		for _, u := range comments[0].Dislikes {
			if u == "user-b" {
				inDislikes++
			}
		}
		if inLikes+inDislikes != 1 {
			t.Fatalf("after %s: user appears %d times across sets", kind, inLikes+inDislikes)
		}
	}
}

func TestReact_MultipleUsers(t *testing.T) {
	comments := flat([2]string{"1", ""})
	comments, _, _ = React(comments, "1", "user-b", ReactionLike)
	comments, _, _ = React(comments, "1", "user-c", ReactionLike)
	_, counts, _ := React(comments, "1", "user-d", ReactionDislike)
	if counts.Likes != 2 || counts.Dislikes != 1 {
		t.Fatalf("expected 2/1, got %d/%d", counts.Likes, counts.Dislikes)
	}
}

func TestReact_Errors(t *testing.T) {
	comments := flat([2]string{"1", ""})
	if _, _, err := React(comments, "1", "user-b", ReactionKind("meh")); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
	if _, _, err := React(comments, "ghost", "user-b", ReactionLike); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
