package harness

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// scenarioSchema constrains the shape of a scenario document. Per-op field
// requirements are checked in validateScenario.
const scenarioSchema = `
#Name: =~"^[A-Za-z0-9_-]+$"

#Case: "ok" | "ALREADY_EXISTS" | "ALREADY_INITIALIZED" | "NOT_FOUND" | "NOT_INITIALIZED" | "UNAUTHORIZED"

#U64: int & >=0 & <=18446744073709551615

#Step: {
	op:      "initialize" | "set" | "read" | "reset" | "config"
	caller?: #Name
	target?: #Name
	value?:  #U64
	expect?: {
		case:   #Case
		value?: #U64
		owner?: #Name
		admin?: #Name
	}
}

#Assertion: {
	type:    "final_record" | "final_config" | "record_count" | "trace_count"
	owner?:  #Name
	value?:  #U64
	absent?: bool
	admin?:  #Name
	op?:     "initialize" | "set" | "read" | "reset" | "config"
	case?:   #Case
	count?:  int & >=0
}

#Scenario: {
	name:        =~"^[a-z0-9_]+$"
	description: string & !=""
	steps: [#Step, ...#Step]
	assertions?: [...#Assertion]
}
`

// ValidateDocument checks a decoded YAML document against the scenario
// schema.
func ValidateDocument(doc any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return formatSchemaError(err)
	}
	return nil
}

// SchemaError lists every schema violation in a scenario document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema: " + strings.Join(e.Violations, "; ")
}

// formatSchemaError flattens a CUE error list into path-qualified messages.
func formatSchemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("schema: %w", err)
	}

	se := &SchemaError{}
	for _, e := range errs {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		se.Violations = append(se.Violations, msg)
	}
	return se
}
