package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/wardesk/faqdex/internal/domain"
)

type fakeEmbedder struct {
	vector   []float32
	err      error
	lastText string
	intent   domain.Intent
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, intent domain.Intent) ([]float32, error) {
	f.lastText = text
	f.intent = intent
	return f.vector, f.err
}

type fakeVectorStore struct {
	docs    map[string]domain.StoredDoc
	listErr error
}

func newFakeVectorStore(ids ...string) *fakeVectorStore {
	s := &fakeVectorStore{docs: map[string]domain.StoredDoc{}}
	for _, id := range ids {
		s.docs[id] = domain.StoredDoc{Document: domain.Document{ID: id}}
	}
	return s
}

func (f *fakeVectorStore) GetByID(ctx context.Context, id string) (*domain.StoredDoc, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("id %s: %w", id, domain.ErrDocumentNotFound)
	}
	return &d, nil
}

func (f *fakeVectorStore) GetAll(ctx context.Context) ([]domain.StoredDoc, error) {
	var out []domain.StoredDoc
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeVectorStore) Upsert(
	ctx context.Context, id string, vector []float32, embedText string, doc domain.Document,
) error {
	doc.ID = id
	f.docs[id] = domain.StoredDoc{Document: doc, EmbedText: embedText}
	return nil
}

func (f *fakeVectorStore) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.docs[id]; !ok {
		return false, nil
	}
	delete(f.docs, id)
	return true, nil
}

func (f *fakeVectorStore) ListIDs(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]string, 0, len(f.docs))
	for id := range f.docs {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeAssets struct {
	removed []string
	err     error
}

func (f *fakeAssets) RemoveAssets(ctx context.Context, refs string) error {
	f.removed = append(f.removed, refs)
	return f.err
}

func newTestStore(emb *fakeEmbedder, vs *fakeVectorStore, assets *fakeAssets) *Store {
	return New(emb, vs, assets, domain.NewCategoryRegistry(domain.DefaultCategories()))
}

func validDoc() domain.Document {
	return domain.Document{
		Category:   "ED",
		Title:      "Cara input triase",
		AnswerBody: "Buka menu triase [GAMBAR 1] lalu isi formulir.",
		Keywords:   "input triase; triase igd",
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty corpus", nil, "1"},
		{"mixed numeric and junk", []string{"1", "abc", "10", "5"}, "11"},
		{"only junk", []string{"abc", "x-2"}, "1"},
		{"single", []string{"7"}, "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(&fakeEmbedder{vector: []float32{1}}, newFakeVectorStore(tt.ids...), &fakeAssets{})
			got, err := store.NextID(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NextID(%v) = %s, want %s", tt.ids, got, tt.want)
			}
		})
	}
}

func TestUpsertAssignsAutoID(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{1, 2}}
	vs := newFakeVectorStore("3")
	store := newTestStore(emb, vs, &fakeAssets{})

	doc := validDoc()
	doc.ID = AutoID
	id, err := store.Upsert(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "4" {
		t.Errorf("id = %s, want 4", id)
	}
	if emb.intent != domain.ForIndexing {
		t.Errorf("intent = %q, want indexing", emb.intent)
	}

	stored := vs.docs["4"]
	if stored.Title != doc.Title {
		t.Errorf("stored title = %q, want %q", stored.Title, doc.Title)
	}
	// Display answer keeps the marker verbatim.
	if !strings.Contains(stored.AnswerBody, "[GAMBAR 1]") {
		t.Errorf("answer body lost its image marker: %q", stored.AnswerBody)
	}
}

func TestUpsertExplicitIDOverwrites(t *testing.T) {
	vs := newFakeVectorStore("2")
	store := newTestStore(&fakeEmbedder{vector: []float32{1}}, vs, &fakeAssets{})

	doc := validDoc()
	doc.ID = "2"
	id, err := store.Upsert(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "2" {
		t.Errorf("id = %s, want 2", id)
	}
	if vs.docs["2"].Title != doc.Title {
		t.Error("explicit id upsert did not overwrite the stored document")
	}
}

func TestUpsertEmbedTextTemplate(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{1}}
	store := newTestStore(emb, newFakeVectorStore(), &fakeAssets{})

	if _, err := store.Upsert(context.Background(), validDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"DOMAIN: ED (",
		"DOKUMEN: Cara input triase",
		"VARIASI PERTANYAAN USER: input triase; triase igd",
		"ISI KONTEN: Buka menu triase lalu isi formulir.",
	} {
		if !strings.Contains(emb.lastText, want) {
			t.Errorf("embed text missing %q:\n%s", want, emb.lastText)
		}
	}
	if strings.Contains(emb.lastText, "[GAMBAR") {
		t.Errorf("embed text must not contain image markers:\n%s", emb.lastText)
	}
}

func TestUpsertEmptyEmbeddingFails(t *testing.T) {
	vs := newFakeVectorStore()
	store := newTestStore(&fakeEmbedder{vector: nil}, vs, &fakeAssets{})

	_, err := store.Upsert(context.Background(), validDoc())
	if !errors.Is(err, domain.ErrEmptyEmbedding) {
		t.Fatalf("error = %v, want ErrEmptyEmbedding", err)
	}
	if len(vs.docs) != 0 {
		t.Error("failed embedding must not write to the store")
	}
}

func TestUpsertEmbedErrorFails(t *testing.T) {
	boom := errors.New("provider down")
	store := newTestStore(&fakeEmbedder{err: boom}, newFakeVectorStore(), &fakeAssets{})

	_, err := store.Upsert(context.Background(), validDoc())
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}

func TestUpsertValidation(t *testing.T) {
	store := newTestStore(&fakeEmbedder{vector: []float32{1}}, newFakeVectorStore(), &fakeAssets{})

	doc := validDoc()
	doc.Title = ""
	if _, err := store.Upsert(context.Background(), doc); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing title: error = %v, want ErrInvalidInput", err)
	}

	doc = validDoc()
	doc.AnswerBody = ""
	if _, err := store.Upsert(context.Background(), doc); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing answer: error = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteCascadesToAssets(t *testing.T) {
	vs := newFakeVectorStore()
	vs.docs["5"] = domain.StoredDoc{Document: domain.Document{
		ID: "5", ImageRefs: "faq5/a.png;faq5/b.png",
	}}
	assets := &fakeAssets{}
	store := newTestStore(&fakeEmbedder{vector: []float32{1}}, vs, assets)

	deleted, err := store.Delete(context.Background(), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("deleted = false, want true")
	}
	if len(assets.removed) != 1 || assets.removed[0] != "faq5/a.png;faq5/b.png" {
		t.Errorf("asset cascade = %v, want the document's refs", assets.removed)
	}
	if _, ok := vs.docs["5"]; ok {
		t.Error("document still present after delete")
	}
}

func TestDeleteSkipsAssetsForNoneSentinel(t *testing.T) {
	vs := newFakeVectorStore()
	vs.docs["6"] = domain.StoredDoc{Document: domain.Document{ID: "6", ImageRefs: "none"}}
	assets := &fakeAssets{}
	store := newTestStore(&fakeEmbedder{vector: []float32{1}}, vs, assets)

	if _, err := store.Delete(context.Background(), "6"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets.removed) != 0 {
		t.Errorf("no-image document triggered asset removal: %v", assets.removed)
	}
}

func TestDeleteMissingIsIdempotent(t *testing.T) {
	store := newTestStore(&fakeEmbedder{vector: []float32{1}}, newFakeVectorStore(), &fakeAssets{})

	deleted, err := store.Delete(context.Background(), "404")
	if err != nil {
		t.Fatalf("missing document should not error, got %v", err)
	}
	if deleted {
		t.Error("deleted = true for a missing document, want false")
	}
}

func TestDeleteProceedsPastAssetFailure(t *testing.T) {
	vs := newFakeVectorStore()
	vs.docs["7"] = domain.StoredDoc{Document: domain.Document{ID: "7", ImageRefs: "x.png"}}
	store := newTestStore(&fakeEmbedder{vector: []float32{1}}, vs, &fakeAssets{err: errors.New("fs error")})

	deleted, err := store.Delete(context.Background(), "7")
	if err != nil || !deleted {
		t.Fatalf("got (%v, %v), want (true, nil)", deleted, err)
	}
}
