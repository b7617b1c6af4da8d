package form

import (
	"github.com/gravitrone/balance-console/internal/collection"
	"github.com/gravitrone/balance-console/internal/masking"
)

// Kind is how a configuration value is edited and serialized.
type Kind int

const (
	KindText Kind = iota
	KindSensitive
	KindNumber
	KindBool
	KindSelect
	KindKeyCollection
	KindList
	KindSensitiveList
	KindPairs
	KindBudgetMap
)

// Scalar reports whether the kind is a single control.
func (k Kind) Scalar() bool {
	switch k {
	case KindText, KindSensitive, KindNumber, KindBool, KindSelect:
		return true
	}
	return false
}

// Section groups fields into one tab.
type Section string

const (
	SectionKeys     Section = "Keys"
	SectionModels   Section = "Models"
	SectionThinking Section = "Thinking"
	SectionNetwork  Section = "Network"
	SectionFeatures Section = "Features"
	SectionUpload   Section = "Upload"
	SectionLogging  Section = "Logging"
)

// Sections lists the tabs in display order.
var Sections = []Section{
	SectionKeys,
	SectionModels,
	SectionThinking,
	SectionNetwork,
	SectionFeatures,
	SectionUpload,
	SectionLogging,
}

// FieldSpec describes one top-level key of the configuration document.
type FieldSpec struct {
	Key     string
	Label   string
	Section Section
	Kind    Kind
	Default any
	Options []string
	// Storage applies to sensitive kinds.
	Storage masking.Storage
	// Extractor applies to key collections.
	Extractor collection.Extractor
	// Source names the list a budget map is linked to.
	Source string
	// Generate marks sensitive fields that accept a generated token.
	Generate bool
}

const (
	// BudgetMin and BudgetMax bound a thinking budget; -1 means dynamic.
	BudgetMin = -1
	BudgetMax = 32767
	// DefaultBudget applies to thinking models without an entry.
	DefaultBudget = 1000
)

// Schema is the ordered field table of the backend document. Keys not listed
// here pass through a save untouched.
var Schema = []FieldSpec{
	{Key: "API_KEYS", Label: "Gemini API keys", Section: SectionKeys, Kind: KindKeyCollection, Default: []string{}, Extractor: collection.GeminiKeys},
	{Key: "VERTEX_API_KEYS", Label: "Vertex express keys", Section: SectionKeys, Kind: KindKeyCollection, Default: []string{}, Extractor: collection.VertexKeys},
	{Key: "ALLOWED_TOKENS", Label: "Allowed tokens", Section: SectionKeys, Kind: KindSensitiveList, Default: []string{}, Generate: true},
	{Key: "AUTH_TOKEN", Label: "Admin token", Section: SectionKeys, Kind: KindSensitive, Default: "", Generate: true},
	{Key: "PAID_KEY", Label: "Paid key", Section: SectionKeys, Kind: KindSensitive, Default: "", Storage: masking.StorageSecret},
	{Key: "VERTEX_EXPRESS_BASE_URL", Label: "Vertex express base URL", Section: SectionKeys, Kind: KindText, Default: "https://aiplatform.googleapis.com/v1beta1/publishers/google"},

	{Key: "TEST_MODEL", Label: "Key check model", Section: SectionModels, Kind: KindText, Default: "gemini-2.5-flash-lite"},
	{Key: "IMAGE_MODELS", Label: "Image models", Section: SectionModels, Kind: KindList, Default: []string{"gemini-2.0-flash-exp"}},
	{Key: "SEARCH_MODELS", Label: "Search models", Section: SectionModels, Kind: KindList, Default: []string{"gemini-2.5-flash", "gemini-2.5-pro"}},
	{Key: "FILTERED_MODELS", Label: "Hidden models", Section: SectionModels, Kind: KindList, Default: []string{}},
	{Key: "URL_CONTEXT_MODELS", Label: "URL context models", Section: SectionModels, Kind: KindList, Default: []string{"gemini-2.5-pro", "gemini-2.5-flash"}},
	{Key: "TOOLS_CODE_EXECUTION_ENABLED", Label: "Code execution tool", Section: SectionModels, Kind: KindBool, Default: false},
	{Key: "URL_CONTEXT_ENABLED", Label: "URL context tool", Section: SectionModels, Kind: KindBool, Default: false},
	{Key: "SHOW_SEARCH_LINK", Label: "Show search links", Section: SectionModels, Kind: KindBool, Default: true},

	{Key: "THINKING_MODELS", Label: "Thinking models", Section: SectionThinking, Kind: KindList, Default: []string{}},
	{Key: "THINKING_BUDGET_MAP", Label: "Thinking budgets", Section: SectionThinking, Kind: KindBudgetMap, Default: map[string]any{}, Source: "THINKING_MODELS"},
	{Key: "SHOW_THINKING_PROCESS", Label: "Show thinking process", Section: SectionThinking, Kind: KindBool, Default: true},

	{Key: "BASE_URL", Label: "Upstream base URL", Section: SectionNetwork, Kind: KindText, Default: "https://generativelanguage.googleapis.com/v1beta"},
	{Key: "TIME_OUT", Label: "Request timeout (s)", Section: SectionNetwork, Kind: KindNumber, Default: 300},
	{Key: "MAX_RETRIES", Label: "Max retries", Section: SectionNetwork, Kind: KindNumber, Default: 3},
	{Key: "MAX_FAILURES", Label: "Failures before disabling a key", Section: SectionNetwork, Kind: KindNumber, Default: 3},
	{Key: "CHECK_INTERVAL_HOURS", Label: "Key check interval (h)", Section: SectionNetwork, Kind: KindNumber, Default: 1},
	{Key: "PROXIES", Label: "Proxies", Section: SectionNetwork, Kind: KindList, Default: []string{}},
	{Key: "CUSTOM_HEADERS", Label: "Custom headers", Section: SectionNetwork, Kind: KindPairs, Default: map[string]any{}},

	{Key: "STREAM_OPTIMIZER_ENABLED", Label: "Stream optimizer", Section: SectionFeatures, Kind: KindBool, Default: false},
	{Key: "FAKE_STREAM_ENABLED", Label: "Fake streaming", Section: SectionFeatures, Kind: KindBool, Default: false},
	{Key: "FAKE_STREAM_EMPTY_DATA_INTERVAL_SECONDS", Label: "Fake stream heartbeat (s)", Section: SectionFeatures, Kind: KindNumber, Default: 5},
	{Key: "TIMEZONE", Label: "Timezone", Section: SectionFeatures, Kind: KindText, Default: "Asia/Shanghai"},

	{Key: "UPLOAD_PROVIDER", Label: "Image upload provider", Section: SectionUpload, Kind: KindSelect, Default: "smms", Options: []string{"smms", "picgo", "cloudflare_imgbed"}},
	{Key: "SMMS_SECRET_TOKEN", Label: "SM.MS token", Section: SectionUpload, Kind: KindSensitive, Default: ""},
	{Key: "PICGO_API_KEY", Label: "PicGo API key", Section: SectionUpload, Kind: KindSensitive, Default: ""},
	{Key: "CLOUDFLARE_IMGBED_URL", Label: "Cloudflare imgbed URL", Section: SectionUpload, Kind: KindText, Default: ""},
	{Key: "CLOUDFLARE_IMGBED_AUTH_CODE", Label: "Cloudflare imgbed auth code", Section: SectionUpload, Kind: KindSensitive, Default: ""},

	{Key: "LOG_LEVEL", Label: "Log level", Section: SectionLogging, Kind: KindSelect, Default: "INFO", Options: []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}},
	{Key: "ERROR_LOG_RECORD_REQUEST_BODY", Label: "Record request bodies in error logs", Section: SectionLogging, Kind: KindBool, Default: false},
	{Key: "AUTO_DELETE_ERROR_LOGS_ENABLED", Label: "Auto delete error logs", Section: SectionLogging, Kind: KindBool, Default: true},
	{Key: "AUTO_DELETE_ERROR_LOGS_DAYS", Label: "Error log retention (days)", Section: SectionLogging, Kind: KindNumber, Default: 7},
	{Key: "AUTO_DELETE_REQUEST_LOGS_ENABLED", Label: "Auto delete request logs", Section: SectionLogging, Kind: KindBool, Default: false},
	{Key: "AUTO_DELETE_REQUEST_LOGS_DAYS", Label: "Request log retention (days)", Section: SectionLogging, Kind: KindNumber, Default: 30},
}

// Lookup returns the spec for key.
func Lookup(key string) (FieldSpec, bool) {
	for _, spec := range Schema {
		if spec.Key == key {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// InSection returns the specs of one section in schema order.
func InSection(section Section) []FieldSpec {
	var out []FieldSpec
	for _, spec := range Schema {
		if spec.Section == section {
			out = append(out, spec)
		}
	}
	return out
}
