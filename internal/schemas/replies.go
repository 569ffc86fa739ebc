package schemas

// RateReply is the schema for a Tier-3 extraction reply: an object whose keys
// come from the tenor vocabulary and whose values are numeric or null.
const RateReply = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "term_noterm": {"type": ["number", "null"]},
    "term_1m":  {"type": ["number", "null"]},
    "term_2m":  {"type": ["number", "null"]},
    "term_3m":  {"type": ["number", "null"]},
    "term_6m":  {"type": ["number", "null"]},
    "term_9m":  {"type": ["number", "null"]},
    "term_12m": {"type": ["number", "null"]},
    "term_13m": {"type": ["number", "null"]},
    "term_15m": {"type": ["number", "null"]},
    "term_18m": {"type": ["number", "null"]},
    "term_24m": {"type": ["number", "null"]},
    "term_36m": {"type": ["number", "null"]}
  }
}`

// CentralRateReply is the schema for a Tier-3 SBV central-rate reply.
const CentralRateReply = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "usd_vnd_rate": {"type": ["number", "null"]},
    "issue_date":   {"type": ["string", "null"]},
    "document_no":  {"type": ["string", "null"]}
  },
  "required": ["usd_vnd_rate"]
}`

// PulseReply is the schema for the market-pulse selection reply.
const PulseReply = `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["index", "title_vi", "summary_vi", "title_en", "summary_en", "affected_market", "impact_score"],
        "properties": {
          "index":           {"type": "integer", "minimum": 0},
          "title_vi":        {"type": "string"},
          "summary_vi":      {"type": "string"},
          "title_en":        {"type": "string"},
          "summary_en":      {"type": "string"},
          "affected_market": {"type": "string", "enum": ["VNINDEX", "GOLD", "REAL_ESTATE", "BANKING", "FX"]},
          "impact_score":    {"type": "number", "minimum": -1, "maximum": 1}
        }
      }
    }
  }
}`
