package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// --- mocks ---

type mockPoints struct {
	pb.PointsClient
	upsertReq *pb.UpsertPoints
	upsertErr error
	searchReq *pb.SearchPoints
	searchRes *pb.SearchResponse
	searchErr error
	deleteReq *pb.DeletePoints
}

func (m *mockPoints) Upsert(_ context.Context, req *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.upsertReq = req
	return &pb.PointsOperationResponse{}, m.upsertErr
}

func (m *mockPoints) Search(_ context.Context, req *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.searchReq = req
	return m.searchRes, m.searchErr
}

func (m *mockPoints) Delete(_ context.Context, req *pb.DeletePoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.deleteReq = req
	return &pb.PointsOperationResponse{}, nil
}

type mockCollections struct {
	pb.CollectionsClient
	existing  []string
	created   *pb.CreateCollection
	listErr   error
	createErr error
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	resp := &pb.ListCollectionsResponse{}
	for _, name := range m.existing {
		resp.Collections = append(resp.Collections, &pb.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (m *mockCollections) Create(_ context.Context, req *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created = req
	return &pb.CollectionOperationResponse{}, m.createErr
}

// --- tests ---

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	cols := &mockCollections{}
	s := NewWithClients(&mockPoints{}, cols, "contracts")

	if err := s.EnsureCollection(context.Background(), 768); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created == nil {
		t.Fatal("expected collection create call")
	}
	if cols.created.GetCollectionName() != "contracts" {
		t.Errorf("wrong collection name: %s", cols.created.GetCollectionName())
	}
	params := cols.created.GetVectorsConfig().GetParams()
	if params.GetSize() != 768 {
		t.Errorf("wrong vector size: %d", params.GetSize())
	}
}

func TestEnsureCollection_SkipsWhenPresent(t *testing.T) {
	cols := &mockCollections{existing: []string{"contracts"}}
	s := NewWithClients(&mockPoints{}, cols, "contracts")

	if err := s.EnsureCollection(context.Background(), 768); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created != nil {
		t.Error("expected no create call for existing collection")
	}
}

func TestUpsert_ConvertsPayload(t *testing.T) {
	points := &mockPoints{}
	s := NewWithClients(points, &mockCollections{}, "contracts")

	records := []Record{
		{
			ID:     "11111111-1111-1111-1111-111111111111",
			Values: []float32{0.1, 0.2},
			Payload: map[string]any{
				"text":        "Hello world.",
				"doc_id":      "doc-1",
				"category":    "IP Law",
				"chunk_index": 0,
			},
		},
	}
	if err := s.Upsert(context.Background(), records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points.upsertReq == nil || len(points.upsertReq.GetPoints()) != 1 {
		t.Fatal("expected one upserted point")
	}
	p := points.upsertReq.GetPoints()[0]
	if p.GetId().GetUuid() != records[0].ID {
		t.Errorf("point id mismatch: %s", p.GetId().GetUuid())
	}
	payload := p.GetPayload()
	if payload["text"].GetStringValue() != "Hello world." {
		t.Errorf("text payload mismatch: %v", payload["text"])
	}
	if payload["chunk_index"].GetIntegerValue() != 0 {
		t.Errorf("chunk_index payload mismatch: %v", payload["chunk_index"])
	}
}

func TestUpsert_EmptyIsNoop(t *testing.T) {
	points := &mockPoints{}
	s := NewWithClients(points, &mockCollections{}, "contracts")
	if err := s.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points.upsertReq != nil {
		t.Error("expected no upsert call for empty batch")
	}
}

func TestQuery_ParsesMatchesInOrder(t *testing.T) {
	points := &mockPoints{
		searchRes: &pb.SearchResponse{
			Result: []*pb.ScoredPoint{
				{
					Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "a"}},
					Score: 0.9,
					Payload: map[string]*pb.Value{
						"text":        {Kind: &pb.Value_StringValue{StringValue: "first"}},
						"doc_id":      {Kind: &pb.Value_StringValue{StringValue: "doc-1"}},
						"category":    {Kind: &pb.Value_StringValue{StringValue: "IP Law"}},
						"chunk_index": {Kind: &pb.Value_IntegerValue{IntegerValue: 3}},
					},
				},
				{
					Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "b"}},
					Score: 0.7,
					Payload: map[string]*pb.Value{
						"text": {Kind: &pb.Value_StringValue{StringValue: "second"}},
					},
				},
			},
		},
	}
	s := NewWithClients(points, &mockCollections{}, "contracts")

	matches, err := s.Query(context.Background(), []float32{0.5}, 5, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Text != "first" || matches[1].Text != "second" {
		t.Errorf("store order not preserved: %+v", matches)
	}
	if matches[0].ChunkIndex != 3 || matches[0].Category != "IP Law" {
		t.Errorf("payload not parsed: %+v", matches[0])
	}
	if points.searchReq.GetFilter() != nil {
		t.Error("expected no filter without category")
	}
}

func TestQuery_CategoryFilter(t *testing.T) {
	points := &mockPoints{searchRes: &pb.SearchResponse{}}
	s := NewWithClients(points, &mockCollections{}, "contracts")

	if _, err := s.Query(context.Background(), []float32{0.5}, 3, "IP Law"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filter := points.searchReq.GetFilter()
	if filter == nil || len(filter.GetMust()) != 1 {
		t.Fatal("expected one category filter condition")
	}
	if points.searchReq.GetLimit() != 3 {
		t.Errorf("expected topK 3, got %d", points.searchReq.GetLimit())
	}
}

func TestQuery_Error(t *testing.T) {
	points := &mockPoints{searchErr: errors.New("unavailable")}
	s := NewWithClients(points, &mockCollections{}, "contracts")

	if _, err := s.Query(context.Background(), []float32{0.5}, 5, ""); err == nil {
		t.Fatal("expected error")
	}
}
