package policy

// BuiltinPolicies returns the policies every run evaluates by default.
func BuiltinPolicies() []Policy {
	return []Policy{
		actorNamingPolicy(),
		timeoutCapPolicy(),
		missingDescPolicy(),
	}
}

// actorNamingPolicy requires fully qualified, namespaced actor names.
func actorNamingPolicy() Policy {
	return Policy{
		Name:        "actor-naming",
		Description: "Actor names must be dotted namespace.Name identifiers",
		Severity:    SeverityError,
		Enabled:     true,
		Rego: `package overture.policies.naming

import rego.v1

deny contains violation if {
	not regex.match("^[a-z][a-z0-9_]*\\.[A-Za-z][A-Za-z0-9]*$", input.actor)
	violation := {
		"message": sprintf("actor name %q is not a namespaced identifier", [input.actor]),
		"severity": "error",
	}
}
`,
	}
}

// timeoutCapPolicy bounds per-actor timeouts to one day.
func timeoutCapPolicy() Policy {
	return Policy{
		Name:        "timeout-cap",
		Description: "Per-actor timeouts must not exceed 24 hours",
		Severity:    SeverityError,
		Enabled:     true,
		Rego: `package overture.policies.timeout

import rego.v1

deny contains violation if {
	input.timeout > 86400
	violation := {
		"message": sprintf("actor %q declares a %v second timeout, above the 86400 second cap", [input.actor, input.timeout]),
		"severity": "error",
	}
}
`,
	}
}

// missingDescPolicy nudges script authors toward described nodes. Advisory
// only.
func missingDescPolicy() Policy {
	return Policy{
		Name:        "require-desc",
		Description: "Actor nodes should carry a description",
		Severity:    SeverityWarning,
		Enabled:     true,
		Rego: `package overture.policies.desc

import rego.v1

deny contains violation if {
	input.desc == ""
	violation := {
		"message": sprintf("actor %q has no description", [input.actor]),
		"severity": "warning",
	}
}
`,
	}
}
