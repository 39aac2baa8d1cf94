package engagement

import (
	"testing"
	"time"
)

func sp(s string) *string { return &s }

func flat(ids ...[2]string) []Comment {
	out := make([]Comment, 0, len(ids))
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, pair := range ids {
		c := Comment{ID: pair[0], UserID: "user-a", Body: "c" + pair[0], CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if pair[1] != "" {
			c.ParentID = sp(pair[1])
		}
		out = append(out, c)
	}
	return out
}

func countNodes(nodes []*CommentNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + countNodes(node.Replies)
	}
	return n
}

func TestBuildThread_Nesting(t *testing.T) {
	comments := flat([2]string{"1", ""}, [2]string{"2", "1"}, [2]string{"3", "2"}, [2]string{"4", ""})

	roots := BuildThread(comments)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "1" || roots[1].ID != "4" {
		t.Fatalf("expected roots [1 4], got [%s %s]", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Replies) != 1 || roots[0].Replies[0].ID != "2" {
		t.Fatalf("expected comment 2 under 1, got %+v", roots[0].Replies)
	}
	if len(roots[0].Replies[0].Replies) != 1 || roots[0].Replies[0].Replies[0].ID != "3" {
		t.Fatal("expected comment 3 under 2")
	}
}

func TestBuildThread_EveryCommentAppearsOnce(t *testing.T) {
	comments := flat(
		[2]string{"1", ""}, [2]string{"2", "1"}, [2]string{"3", "1"},
		[2]string{"4", "2"}, [2]string{"5", ""}, [2]string{"6", "5"},
	)
	roots := BuildThread(comments)
	if got := countNodes(roots); got != len(comments) {
		t.Fatalf("expected %d nodes across forest, got %d", len(comments), got)
	}
}

func TestBuildThread_DanglingParentBecomesRoot(t *testing.T) {
	comments := flat([2]string{"1", ""}, [2]string{"2", "missing"})

	roots := BuildThread(comments)
	if len(roots) != 2 {
		t.Fatalf("expected dangling comment kept as root, got %d roots", len(roots))
	}
	if roots[1].ID != "2" {
		t.Fatalf("expected comment 2 as second root, got %s", roots[1].ID)
	}
}

func TestBuildThread_SelfParentBecomesRoot(t *testing.T) {
	comments := flat([2]string{"1", "1"})
	roots := BuildThread(comments)
	if len(roots) != 1 || roots[0].ID != "1" {
		t.Fatalf("expected self-referencing comment as root, got %d roots", len(roots))
	}
	if len(roots[0].Replies) != 0 {
		t.Fatal("self-referencing comment must not be its own reply")
	}
}

func TestBuildThread_StableInputOrder(t *testing.T) {
	comments := flat(
		[2]string{"1", ""}, [2]string{"2", "1"}, [2]string{"3", "1"}, [2]string{"4", "1"},
	)
	roots := BuildThread(comments)
	replies := roots[0].Replies
	if len(replies) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(replies))
	}
	for i, want := range []string{"2", "3", "4"} {
		if replies[i].ID != want {
			t.Fatalf("expected reply %d to be %s, got %s", i, want, replies[i].ID)
		}
	}
}

func TestBuildThread_Idempotent(t *testing.T) {
	comments := flat([2]string{"1", ""}, [2]string{"2", "1"})
	first := BuildThread(comments)
	second := BuildThread(comments)
	if countNodes(first) != countNodes(second) {
		t.Fatal("expected structurally identical output on repeated builds")
	}
	if first[0] == second[0] {
		t.Fatal("expected fresh nodes on each build, got shared pointers")
	}
	// The input list itself is untouched.
	if comments[1].ParentID == nil || *comments[1].ParentID != "1" {
		t.Fatal("input slice was mutated")
	}
}

func TestDescendantIDs_SpecScenario(t *testing.T) {
	comments := flat([2]string{"1", ""}, [2]string{"2", "1"}, [2]string{"3", "2"}, [2]string{"4", ""})

	ids := DescendantIDs(comments, "1")
	if len(ids) != 3 {
		t.Fatalf("expected {1,2,3}, got %v", ids)
	}
	for _, want := range []string{"1", "2", "3"} {
		if _, ok := ids[want]; !ok {
			t.Fatalf("expected %s in descendant set", want)
		}
	}
	if _, ok := ids["4"]; ok {
		t.Fatal("comment 4 must not be in the descendant set")
	}
}

func TestDescendantIDs_LeafIncludesSelf(t *testing.T) {
	comments := flat([2]string{"1", ""}, [2]string{"2", "1"})
	ids := DescendantIDs(comments, "2")
	if len(ids) != 1 {
		t.Fatalf("expected only the leaf itself, got %v", ids)
	}
}

func TestDescendantIDs_TerminatesOnCycle(t *testing.T) {
	// Corrupted store: 2 and 3 parent each other.
	comments := flat([2]string{"1", ""}, [2]string{"2", "3"}, [2]string{"3", "2"})

	done := make(chan map[string]struct{}, 1)
	go func() { done <- DescendantIDs(comments, "2") }()

	select {
	case ids := <-done:
		if _, ok := ids["2"]; !ok {
			t.Fatalf("expected closure to contain the start id, got %v", ids)
		}
		if _, ok := ids["3"]; !ok {
			t.Fatalf("expected closure to contain 3, got %v", ids)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("traversal did not terminate on cyclic input")
	}
}

func TestAdd_TopLevelAndReply(t *testing.T) {
	now := time.Now().UTC()
	comments, created, err := Add(nil, Comment{ID: "1", UserID: "user-a", Body: "  hello  ", CreatedAt: now})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.Body != "hello" {
		t.Fatalf("expected trimmed body, got %q", created.Body)
	}
	if created.Likes == nil || created.Dislikes == nil {
		t.Fatal("expected initialized reaction sets")
	}

	comments, reply, err := Add(comments, Comment{ID: "2", UserID: "user-b", ParentID: sp("1"), Body: "re", CreatedAt: now})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != "1" {
		t.Fatal("expected reply parent to be 1")
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
}

func TestAdd_EmptyBody(t *testing.T) {
	_, _, err := Add(nil, Comment{ID: "1", UserID: "user-a", Body: "   "})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdd_MissingParent(t *testing.T) {
	_, _, err := Add(nil, Comment{ID: "2", UserID: "user-a", ParentID: sp("ghost"), Body: "re"})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestEdit_OwnerOrAdmin(t *testing.T) {
	comments := flat([2]string{"1", ""})
	now := time.Now().UTC()

	if _, err := Edit(comments, "1", "user-b", false, "nope", now); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	edited, err := Edit(comments, "1", "user-b", true, "admin edit", now)
	if err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	if edited[0].Body != "admin edit" || !edited[0].IsEdited || edited[0].EditedAt == nil {
		t.Fatalf("expected edited flags set, got %+v", edited[0])
	}
	// Original slice untouched.
	if comments[0].Body != "c1" || comments[0].IsEdited {
		t.Fatal("input slice was mutated")
	}
}

func TestEdit_Errors(t *testing.T) {
	comments := flat([2]string{"1", ""})
	now := time.Now().UTC()

	if _, err := Edit(comments, "1", "user-a", false, "  ", now); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for blank body, got %v", err)
	}
	if _, err := Edit(comments, "ghost", "user-a", false, "x", now); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_CascadeSpecScenario(t *testing.T) {
	comments := flat([2]string{"1", ""}, [2]string{"2", "1"}, [2]string{"3", "2"}, [2]string{"4", ""})

	remaining, removed, err := Delete(comments, "1", "user-a", false)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if len(remaining) != 1 || remaining[0].ID != "4" {
		t.Fatalf("expected only comment 4 left, got %+v", remaining)
	}
	if len(comments) != 4 {
		t.Fatal("input slice was mutated")
	}
}

func TestDelete_PreservesRemainderOrder(t *testing.T) {
	comments := flat(
		[2]string{"1", ""}, [2]string{"2", ""}, [2]string{"3", "2"}, [2]string{"4", ""}, [2]string{"5", ""},
	)
	remaining, removed, err := Delete(comments, "2", "user-a", false)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	for i, want := range []string{"1", "4", "5"} {
		if remaining[i].ID != want {
			t.Fatalf("expected remainder order [1 4 5], got %+v", remaining)
		}
	}
}

func TestDelete_OwnerOrAdmin(t *testing.T) {
	comments := flat([2]string{"1", ""})

	if _, _, err := Delete(comments, "1", "user-b", false); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, _, err := Delete(comments, "ghost", "user-a", false); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, removed, err := Delete(comments, "1", "user-b", true); err != nil || removed != 1 {
		t.Fatalf("expected admin delete to succeed, got removed=%d err=%v", removed, err)
	}
}
