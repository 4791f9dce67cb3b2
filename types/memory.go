package types

// Interaction is one entry of an agent's conversation history.
type Interaction struct {
	Prompt   string `json:"prompt"`
	ResultID string `json:"result_id"`
	Success  bool   `json:"success"`
}

// GeneratedImageRecord is the persisted form of a successful outcome.
type GeneratedImageRecord struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Success  bool   `json:"success"`
}

// MemorySnapshot is the whole-document form of an agent session memory.
//
// GeneratedImages is written for reference only; restoring a snapshot brings
// back History and Context but does not rebuild generated outcomes.
type MemorySnapshot struct {
	History         []Interaction          `json:"conversation_history"`
	GeneratedImages []GeneratedImageRecord `json:"generated_images"`
	Context         map[string]any         `json:"context"`
}
