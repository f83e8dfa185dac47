package faq

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// Match is one similarity search hit.
type Match struct {
	ID         string
	Question   string
	Answer     string
	Similarity float32
}

// Index holds one in-memory vector collection per guild.
type Index struct {
	mu        sync.Mutex
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc
}

// NewIndex creates an empty index using the given embedder.
func NewIndex(e Embedder) *Index {
	return &Index{
		db:        chromem.NewDB(),
		embedFunc: toChromemFunc(e),
	}
}

func (ix *Index) collection(guildID string) (*chromem.Collection, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.db.GetOrCreateCollection("faq-"+guildID, nil, ix.embedFunc)
}

// Add indexes one question/answer pair for the guild.
func (ix *Index) Add(ctx context.Context, guildID, id, question, answer string) error {
	col, err := ix.collection(guildID)
	if err != nil {
		return fmt.Errorf("getting collection: %w", err)
	}
	err = col.AddDocuments(ctx, []chromem.Document{{
		ID:       id,
		Content:  question,
		Metadata: map[string]string{"answer": answer},
	}}, 1)
	if err != nil {
		return fmt.Errorf("indexing faq entry: %w", err)
	}
	return nil
}

// Remove drops an entry from the guild's collection.
func (ix *Index) Remove(ctx context.Context, guildID, id string) error {
	col, err := ix.collection(guildID)
	if err != nil {
		return fmt.Errorf("getting collection: %w", err)
	}
	return col.Delete(ctx, nil, nil, id)
}

// Search returns the best match for the query, or nil if the collection
// is empty.
func (ix *Index) Search(ctx context.Context, guildID, query string) (*Match, error) {
	col, err := ix.collection(guildID)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	if col.Count() == 0 {
		return nil, nil
	}

	results, err := col.Query(ctx, query, 1, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying faq index: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	r := results[0]
	return &Match{
		ID:         r.ID,
		Question:   r.Content,
		Answer:     r.Metadata["answer"],
		Similarity: r.Similarity,
	}, nil
}
