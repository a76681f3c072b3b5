package brew

// Op names a brew invocation. It is used in logs and in ToolError.
type Op string

// Supported brew invocations.
const (
	OpListCasks    Op = "list-casks"
	OpListFormulae Op = "list-formulae"
	OpSearch       Op = "search"
	OpInstall      Op = "install"
	OpUninstall    Op = "uninstall"
)

// commandArgs holds the argument templates for every brew invocation.
// The placeholders "{pkg}" and "{query}" are replaced per call.
var commandArgs = map[Op][]string{
	OpListCasks:    {"list", "--cask", "-1"},
	OpListFormulae: {"list", "--formula", "-1"},
	OpSearch:       {"search", "{query}"},
	OpInstall:      {"install", "{pkg}"},
	OpUninstall:    {"uninstall", "--force", "{pkg}"},
}

// expandArgs returns the arguments for op with placeholders replaced by value.
func expandArgs(op Op, value string) []string {
	tmpl := commandArgs[op]

	result := make([]string, len(tmpl))
	for i, arg := range tmpl {
		switch arg {
		case "{pkg}", "{query}":
			result[i] = value
		default:
			result[i] = arg
		}
	}

	return result
}
