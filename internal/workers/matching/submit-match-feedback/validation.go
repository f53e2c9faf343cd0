package submitmatchfeedback

import "venture-match/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["matchId", "side"],
  "anyOf": [
    {"required": ["rating"]},
    {"required": ["notes"], "properties": {"notes": {"minLength": 1}}}
  ],
  "properties": {
    "matchId": {"type": "string", "minLength": 1},
    "side": {"type": "string", "enum": ["startup", "investor"]},
    "rating": {"type": "integer", "minimum": 1, "maximum": 5},
    "notes": {"type": "string", "maxLength": 2000},
    "actualOutcome": {
      "type": "string",
      "enum": ["investment", "partnership", "advisory", "introduction", "no-outcome"]
    }
  }
}`)
