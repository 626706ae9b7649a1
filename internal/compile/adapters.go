package compile

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/skarpdev/iflowgen/pkg/api"
)

// Typed views over the loose component config maps. Decoding is weakly
// typed on purpose: extraction output routinely carries numbers as strings
// and vice versa.

type requestReplyConfig struct {
	EndpointPath string `mapstructure:"endpoint_path"`
	Address      string `mapstructure:"address"`
	URL          string `mapstructure:"url"`
	Method       string `mapstructure:"method"`
	Auth         string `mapstructure:"authentication"`
}

type odataConfig struct {
	Address      string `mapstructure:"address"`
	URL          string `mapstructure:"url"`
	ResourcePath string `mapstructure:"resource_path"`
	Resource     string `mapstructure:"resourcePath"`
	EntitySet    string `mapstructure:"entity_set"`
	Operation    string `mapstructure:"operation"`
	Method       string `mapstructure:"method"`
	Auth         string `mapstructure:"authentication"`
	EDMX         string `mapstructure:"edmx"`
}

type sftpConfig struct {
	Host      string `mapstructure:"host"`
	Address   string `mapstructure:"address"`
	Path      string `mapstructure:"path"`
	Directory string `mapstructure:"directory"`
	FileName  string `mapstructure:"file_name"`
	Auth      string `mapstructure:"authentication"`
}

type routerConfig struct {
	Conditions []routerCondition `mapstructure:"conditions"`
}

type routerCondition struct {
	Condition  string `mapstructure:"condition"`
	Expression string `mapstructure:"expression"`
	Target     string `mapstructure:"target"`
}

func (rc routerCondition) expr() string {
	if rc.Condition != "" {
		return rc.Condition
	}
	return rc.Expression
}

type scriptConfig struct {
	Content string `mapstructure:"script_content"`
	Script  string `mapstructure:"script"`
}

func (sc scriptConfig) body() string {
	if sc.Content != "" {
		return sc.Content
	}
	return sc.Script
}

type contentModifierConfig struct {
	BodyType    string           `mapstructure:"body_type"`
	Body        string           `mapstructure:"body"`
	Content     string           `mapstructure:"content"`
	WrapContent string           `mapstructure:"wrap_content"`
	Headers     []modifierRowRaw `mapstructure:"headers"`
	Properties  []modifierRowRaw `mapstructure:"properties"`
}

type modifierRowRaw struct {
	Action string `mapstructure:"action"`
	Name   string `mapstructure:"name"`
	Type   string `mapstructure:"type"`
	Value  string `mapstructure:"value"`
}

type mappingConfig struct {
	MappingURI  string `mapstructure:"mapping_uri"`
	MappingName string `mapstructure:"mapping_name"`
}

func decodeConfig(cfg map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(cfg)
}

// externalTarget classifies the backend a request_reply component talks to.
type externalTarget int

const (
	targetHTTP externalTarget = iota
	targetSFTP
	targetSuccessFactors
)

var sftpVocabulary = []string{"sftp", "archive", "file"}
var successFactorsVocabulary = []string{"odata", "successfactors", "employee"}

// classifyTarget inspects the endpoint path, address, and component name
// against the known vocabularies. Generic HTTP is the default when no
// pattern matches.
func classifyTarget(c api.Component, cfg requestReplyConfig) externalTarget {
	haystack := strings.ToLower(strings.Join([]string{
		cfg.EndpointPath, cfg.Address, cfg.URL, c.Name,
	}, " "))
	for _, word := range sftpVocabulary {
		if strings.Contains(haystack, word) {
			return targetSFTP
		}
	}
	for _, word := range successFactorsVocabulary {
		if strings.Contains(haystack, word) {
			return targetSuccessFactors
		}
	}
	return targetHTTP
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
