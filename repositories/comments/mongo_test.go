package comments

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mflixapp/mflix/common"
	"github.com/mflixapp/mflix/logging"
	"github.com/mflixapp/mflix/metrics"
	"github.com/mflixapp/mflix/models"
	"github.com/mflixapp/mflix/mongox/mongoxtest"
)

func newRepoWithFake(t *testing.T) (*MongoRepository, *mongoxtest.FakeCollection) {
	t.Helper()
	col := &mongoxtest.FakeCollection{}
	m := metrics.NewCollector(prometheus.NewRegistry())
	// The fake has no replica set, so one collection stands in for both
	// the default and the majority-read handle.
	return NewMongoRepository(col, col, m, logging.NewDiscardLogger()), col
}

func addComment(t *testing.T, repo *MongoRepository, email, text string) *models.Comment {
	t.Helper()
	c, err := repo.Add(context.Background(), &models.Comment{
		Email:   email,
		Text:    text,
		MovieID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	return c
}

func TestAdd_ReturnsCanonicalStoredForm(t *testing.T) {
	repo, _ := newRepoWithFake(t)

	c := addComment(t, repo, "a@x.com", "great movie")
	if c.ID.IsZero() {
		t.Fatal("stored comment should carry the assigned id")
	}
	if c.Date.IsZero() {
		t.Fatal("stored comment should carry a creation date")
	}
	if c.Email != "a@x.com" || c.Text != "great movie" {
		t.Fatalf("unexpected stored comment: %+v", c)
	}

	got, err := repo.Get(context.Background(), c.ID.Hex())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil || got.ID != c.ID || got.Text != c.Text {
		t.Fatalf("re-read mismatch: %+v vs %+v", got, c)
	}
}

func TestAdd_StoreError(t *testing.T) {
	repo, col := newRepoWithFake(t)
	col.InsertErr = errors.New("primary down")

	_, err := repo.Add(context.Background(), &models.Comment{Email: "a@x.com", Text: "x"})
	if !errors.Is(err, common.ErrOperationFailed) {
		t.Fatalf("want ErrOperationFailed, got %v", err)
	}
}

func TestGet_Absent(t *testing.T) {
	repo, _ := newRepoWithFake(t)

	got, err := repo.Get(context.Background(), primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil for unknown comment, got %+v", got)
	}
}

func TestGet_MalformedID(t *testing.T) {
	repo, _ := newRepoWithFake(t)

	_, err := repo.Get(context.Background(), "not-a-hex-id")
	if !errors.Is(err, common.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestUpdate_ByOwner(t *testing.T) {
	repo, _ := newRepoWithFake(t)
	ctx := context.Background()

	c := addComment(t, repo, "a@x.com", "first draft")

	ok, err := repo.Update(ctx, c.ID.Hex(), "second draft", "a@x.com")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !ok {
		t.Fatal("owner update should report success")
	}

	got, err := repo.Get(ctx, c.ID.Hex())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Text != "second draft" {
		t.Fatalf("text not updated: %q", got.Text)
	}
}

func TestUpdate_ByNonOwnerIsRejectedNoOp(t *testing.T) {
	repo, col := newRepoWithFake(t)
	ctx := context.Background()

	c := addComment(t, repo, "a@x.com", "original")

	ok, err := repo.Update(ctx, c.ID.Hex(), "vandalized", "b@x.com")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if ok {
		t.Fatal("non-owner update must report failure")
	}

	got, err := repo.Get(ctx, c.ID.Hex())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Text != "original" {
		t.Fatalf("text must be unchanged, got %q", got.Text)
	}
	// The ownership miss must not have upserted a stray document.
	if n := col.Len(); n != 1 {
		t.Fatalf("want 1 document after rejected update, got %d", n)
	}
}

func TestUpdate_MalformedID(t *testing.T) {
	repo, _ := newRepoWithFake(t)

	ok, err := repo.Update(context.Background(), "nope", "text", "a@x.com")
	if ok || !errors.Is(err, common.ErrInvalidArgument) {
		t.Fatalf("want (false, ErrInvalidArgument), got (%v, %v)", ok, err)
	}
}

func TestDelete_ByOwnerExactlyOnce(t *testing.T) {
	repo, _ := newRepoWithFake(t)
	ctx := context.Background()

	c := addComment(t, repo, "a@x.com", "ephemeral")

	ok, err := repo.Delete(ctx, c.ID.Hex(), "a@x.com")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !ok {
		t.Fatal("first delete should report true")
	}

	ok, err = repo.Delete(ctx, c.ID.Hex(), "a@x.com")
	if err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
	if ok {
		t.Fatal("second delete of the same id must report false")
	}
}

func TestDelete_ByNonOwner(t *testing.T) {
	repo, col := newRepoWithFake(t)
	ctx := context.Background()

	c := addComment(t, repo, "a@x.com", "keep me")

	ok, err := repo.Delete(ctx, c.ID.Hex(), "b@x.com")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if ok {
		t.Fatal("non-owner delete must report false")
	}
	if n := col.Len(); n != 1 {
		t.Fatalf("comment must survive a non-owner delete, got %d documents", n)
	}
}

func TestMostActiveCommenters_CountsAndOrder(t *testing.T) {
	repo, col := newRepoWithFake(t)

	seed := map[string]int{"a@x.com": 3, "b@x.com": 2, "c@x.com": 2, "d@x.com": 1}
	for email, n := range seed {
		for i := 0; i < n; i++ {
			col.Seed(models.Comment{Email: email, Text: "t"})
		}
	}

	critics, err := repo.MostActiveCommenters(context.Background())
	if err != nil {
		t.Fatalf("MostActiveCommenters error: %v", err)
	}
	if len(critics) != 4 {
		t.Fatalf("want 4 critics, got %d", len(critics))
	}

	// Descending by count; b before c on the email tie-break.
	wantOrder := []models.Critic{
		{Email: "a@x.com", Count: 3},
		{Email: "b@x.com", Count: 2},
		{Email: "c@x.com", Count: 2},
		{Email: "d@x.com", Count: 1},
	}
	for i, want := range wantOrder {
		if critics[i] != want {
			t.Fatalf("position %d: want %+v, got %+v", i, want, critics[i])
		}
	}
}

func TestMostActiveCommenters_CapsAtTwenty(t *testing.T) {
	repo, col := newRepoWithFake(t)

	for i := 0; i < 25; i++ {
		col.Seed(models.Comment{Email: string(rune('a'+i)) + "@x.com", Text: "t"})
	}

	critics, err := repo.MostActiveCommenters(context.Background())
	if err != nil {
		t.Fatalf("MostActiveCommenters error: %v", err)
	}
	if len(critics) != 20 {
		t.Fatalf("want ranking capped at 20, got %d", len(critics))
	}
}

func TestMostActiveCommenters_StoreError(t *testing.T) {
	repo, col := newRepoWithFake(t)
	col.AggregateErr = errors.New("primary down")

	_, err := repo.MostActiveCommenters(context.Background())
	if err == nil {
		t.Fatal("want error when aggregation fails")
	}
}
