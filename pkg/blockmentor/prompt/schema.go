package prompt

import "encoding/json"

// AlgorithmReply is the structured answer to Algorithm and Update prompts.
type AlgorithmReply struct {
	Algorithm string `json:"algorithm"`
	Response  string `json:"response"`
}

// AnalysisReply is the structured answer to an Analysis prompt.
type AnalysisReply struct {
	Response string `json:"response"`
}

// AlgorithmSchema is the response schema for AlgorithmReply.
var AlgorithmSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "algorithm": {"type": "string", "description": "The numbered, step-by-step algorithm only."},
    "response": {"type": "string", "description": "The guessed use case or the description of changes, phrased as a question to the learner."}
  },
  "required": ["algorithm", "response"],
  "propertyOrdering": ["algorithm", "response"]
}`)

// AnalysisSchema is the response schema for AnalysisReply.
var AnalysisSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "response": {"type": "string", "description": "The learning analysis."}
  },
  "required": ["response"]
}`)
