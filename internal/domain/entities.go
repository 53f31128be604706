package domain

// Chunk is the unit of retrieval: a bounded span of text from one source
// document. Immutable once created. Position is the chunk's ordinal within
// its source file; ordering across files is not meaningful.
type Chunk struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	Position   int    `json:"position"`
}

// Document is a loaded, normalized source file.
type Document struct {
	Path string
	Text string
}

// SearchResult is a chunk ranked by L2 distance to a query embedding.
// Lower distance means more relevant.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}

// CourseInfo describes a course's index state without forcing a load.
type CourseInfo struct {
	CourseCode string `json:"course_code"`
	Indexed    bool   `json:"indexed"`
	Loaded     bool   `json:"loaded"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	NotesPath  string `json:"notes_path"`
	NotesExist bool   `json:"notes_exist"`
}
