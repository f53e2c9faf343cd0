package computematch

import "venture-match/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["startupId", "investorId"],
  "properties": {
    "startupId": {"type": "string", "minLength": 1},
    "investorId": {"type": "string", "minLength": 1},
    "matchType": {"type": "string"},
    "forceRecalculate": {"type": "boolean"},
    "readOnly": {"type": "boolean"}
  }
}`)
