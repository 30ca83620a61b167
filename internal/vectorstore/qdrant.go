package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"docchat/internal/contextutil"
)

// QdrantStore implements Store on a Qdrant server. Each document maps to an
// alias doc_<id>; re-ingestion builds a brand new collection behind the scenes
// and repoints the alias, so searches see the old set until the swap and the
// new set after it.
type QdrantStore struct {
	client *qdrant.Client
	dims   int
}

// NewQdrantStore creates a Qdrant-backed store.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr string, dims int) (*QdrantStore, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("dims must be greater than 0")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// Extract port from URL, default to 6333 for HTTP
	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
		dims:   dims,
	}, nil
}

func aliasName(documentID string) string {
	return "doc_" + documentID
}

// CreateCollection builds a fresh collection, fills it, then repoints the
// document alias at it and drops the collection the alias pointed to before.
func (s *QdrantStore) CreateCollection(ctx context.Context, documentID string, chunks []Chunk) error {
	logger := contextutil.LoggerFromContext(ctx)

	if documentID == "" {
		return fmt.Errorf("document id is required")
	}
	for i, chunk := range chunks {
		if len(chunk.Vector) != s.dims {
			return fmt.Errorf("%w: chunk %d has %d dims, expected %d", ErrDimensionMismatch, i, len(chunk.Vector), s.dims)
		}
	}

	alias := aliasName(documentID)
	staging := fmt.Sprintf("%s_%s", alias, strings.ReplaceAll(uuid.New().String(), "-", ""))

	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: staging,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	if len(chunks) > 0 {
		points := make([]*qdrant.PointStruct, 0, len(chunks))
		for _, chunk := range chunks {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewID(chunk.ID),
				Vectors: qdrant.NewVectors(chunk.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"content":     chunk.Content,
					"chunk_index": chunk.ChunkIndex,
				}),
			})
		}

		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: staging,
			Points:         points,
		}); err != nil {
			// Leave no orphan behind on a failed fill.
			_ = s.client.DeleteCollection(ctx, staging)
			return fmt.Errorf("failed to upsert points: %w", err)
		}
	}

	previous, err := s.resolveAlias(ctx, alias)
	if err != nil {
		_ = s.client.DeleteCollection(ctx, staging)
		return err
	}

	if previous != "" {
		if err := s.client.DeleteAlias(ctx, alias); err != nil {
			_ = s.client.DeleteCollection(ctx, staging)
			return fmt.Errorf("failed to delete alias: %w", err)
		}
	}
	if err := s.client.CreateAlias(ctx, alias, staging); err != nil {
		_ = s.client.DeleteCollection(ctx, staging)
		return fmt.Errorf("failed to create alias: %w", err)
	}
	if previous != "" {
		if err := s.client.DeleteCollection(ctx, previous); err != nil {
			logger.WarnContext(ctx, "failed to delete replaced collection", "collection", previous, "error", err)
		}
	}

	logger.InfoContext(ctx, "collection created", "document_id", documentID, "chunks", len(chunks))
	return nil
}

// resolveAlias returns the collection the alias points to, or "" if unset.
func (s *QdrantStore) resolveAlias(ctx context.Context, alias string) (string, error) {
	aliases, err := s.client.ListAliases(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list aliases: %w", err)
	}
	for _, desc := range aliases {
		if desc.GetAliasName() == alias {
			return desc.GetCollectionName(), nil
		}
	}
	return "", nil
}

// Search queries through the document alias. Ties on score break by ascending
// chunk index, which Qdrant does not guarantee, so results are re-sorted here.
func (s *QdrantStore) Search(ctx context.Context, documentID string, query []float32, k int) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be greater than 0", ErrBadQuery)
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", ErrBadQuery)
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dims, expected %d", ErrDimensionMismatch, len(query), s.dims)
	}

	alias := aliasName(documentID)
	previous, err := s.resolveAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if previous == "" {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, documentID)
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: alias,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "document_id", documentID, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]Result, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		chunk := Chunk{}
		if point.Id != nil {
			chunk.ID = point.Id.GetUuid()
		}
		if point.Payload != nil {
			meta := convertPayloadToMap(point.Payload)
			if content, ok := meta["content"].(string); ok {
				chunk.Content = content
			}
			if idx, ok := meta["chunk_index"].(int64); ok {
				chunk.ChunkIndex = int(idx)
			}
		}
		results = append(results, Result{Chunk: chunk, Score: point.Score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ChunkIndex < results[j].Chunk.ChunkIndex
	})

	logger.InfoContext(ctx, "search completed", "document_id", documentID, "k", k, "results", len(results))
	return results, nil
}

// DropCollection removes the document alias and its backing collection.
func (s *QdrantStore) DropCollection(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	alias := aliasName(documentID)
	backing, err := s.resolveAlias(ctx, alias)
	if err != nil {
		return err
	}
	if backing == "" {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, documentID)
	}

	if err := s.client.DeleteAlias(ctx, alias); err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}
	if err := s.client.DeleteCollection(ctx, backing); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	logger.InfoContext(ctx, "collection dropped", "document_id", documentID)
	return nil
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
