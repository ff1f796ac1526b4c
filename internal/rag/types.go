package rag

// Role identifies who is asking. Only farmer and distributor carry
// role-specific prompt guidance; other roles get none.
type Role string

const (
	RoleFarmer      Role = "farmer"
	RoleDistributor Role = "distributor"
	RoleRetailer    Role = "retailer"
	RoleConsumer    Role = "consumer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleDistributor, RoleRetailer, RoleConsumer:
		return true
	}
	return false
}

// Metadata records where a chunk came from.
type Metadata struct {
	SourceFile string
	ChunkIndex int
}

// Chunk is a bounded segment of a source document prepared for retrieval.
type Chunk struct {
	ID       string
	Text     string
	Metadata Metadata
}

// IndexedChunk pairs a chunk with its embedding for insertion into the
// vector store. The store owns both for the entry's lifetime.
type IndexedChunk struct {
	Chunk
	Vector []float32
}

// Candidate is one nearest-neighbor result from the vector store. The store
// contract is cosine distance, lower is better, candidates ordered
// best-first. Distance is nil when the backend reported no score, in which
// case the existing ordering is trusted.
type Candidate struct {
	ID         string
	Text       string
	SourceFile string
	ChunkIndex int
	Distance   *float32
}

// Availability captures which pipeline features were successfully
// configured at startup. Call sites branch on it explicitly instead of
// probing clients for nil.
type Availability struct {
	Retrieval  bool
	Generation bool
}
