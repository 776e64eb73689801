package profile

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/recipego/internal/recipe"
	"github.com/vk/recipego/internal/vars"
)

// Profile is the runner-level configuration a build executes under: the
// build-level failure policy, the per-command timeout, and preset variables
// merged under the caller-supplied context.
type Profile struct {
	OnError        recipe.OnError
	CommandTimeout time.Duration
	Variables      vars.Context
}

// Default returns the profile used when no file is given.
func Default() *Profile {
	return &Profile{Variables: vars.Context{}}
}

// schema describes the two top-level blocks a profile may carry.
var schema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "defaults"},
		{Type: "variables"},
	},
}

var defaultsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "onerror"},
		{Name: "command_timeout"},
	},
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return Parse(data, path)
}

// Parse parses profile HCL source. The filename is used in diagnostics.
func Parse(src []byte, filename string) (*Profile, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing profile %s: %w", filename, diags)
	}

	content, diags := file.Body.Content(schema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid profile %s: %w", filename, diags)
	}

	p := Default()
	for _, block := range content.Blocks {
		switch block.Type {
		case "defaults":
			if err := p.decodeDefaults(block); err != nil {
				return nil, err
			}
		case "variables":
			if err := p.decodeVariables(block); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (p *Profile) decodeDefaults(block *hcl.Block) error {
	content, diags := block.Body.Content(defaultsSchema)
	if diags.HasErrors() {
		return fmt.Errorf("invalid defaults block: %w", diags)
	}

	if attr, ok := content.Attributes["onerror"]; ok {
		value, err := stringValue(attr)
		if err != nil {
			return err
		}
		switch policy := recipe.OnError(value); policy {
		case recipe.OnErrorFail, recipe.OnErrorContinue, recipe.OnErrorIgnore:
			p.OnError = policy
		default:
			return fmt.Errorf("%s: invalid onerror value %q, must be one of fail, continue, ignore",
				attr.Range, value)
		}
	}

	if attr, ok := content.Attributes["command_timeout"]; ok {
		value, err := stringValue(attr)
		if err != nil {
			return err
		}
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: invalid command_timeout: %w", attr.Range, err)
		}
		p.CommandTimeout = timeout
	}
	return nil
}

// decodeVariables accepts arbitrary attribute names; every value must be
// convertible to a string.
func (p *Profile) decodeVariables(block *hcl.Block) error {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("invalid variables block: %w", diags)
	}

	for name, attr := range attrs {
		value, err := stringValue(attr)
		if err != nil {
			return err
		}
		p.Variables[name] = value
	}
	return nil
}

// stringValue evaluates an attribute expression and converts the result to
// a string, so numeric values like revision = 123 work as expected.
func stringValue(attr *hcl.Attribute) (string, error) {
	value, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluating %s: %w", attr.Name, diags)
	}
	converted, err := convert.Convert(value, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: %s must be a string: %w", attr.Range, attr.Name, err)
	}
	if converted.IsNull() {
		return "", fmt.Errorf("%s: %s must not be null", attr.Range, attr.Name)
	}
	return converted.AsString(), nil
}
