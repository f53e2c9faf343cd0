package rankmatches

import "venture-match/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["startupId"],
  "properties": {
    "startupId": {"type": "string", "minLength": 1},
    "limit": {"type": "integer", "minimum": 0, "maximum": 100},
    "minScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "markPresented": {"type": "boolean"}
  }
}`)
