package persistence

import "fmt"

// PythonBuiltinBlacklist names the interpreter-provided globals that must
// never be captured or restored as session state: doing so would leak or
// corrupt interpreter internals rather than user data.
var PythonBuiltinBlacklist = []string{
	"__builtins__", "__name__", "__doc__", "__package__", "__loader__",
	"__spec__", "__file__", "__cached__", "__annotations__", "__builtin__",
}

// PythonPrologue returns the source prepended to guest code when
// persistence is enabled. It reads guestStatePath if present, parses it
// as JSON, and installs each entry into the module's global namespace,
// skipping the builtin blacklist. A missing or corrupt file is treated as
// empty state; the guest never raises for it.
func PythonPrologue(guestStatePath string) string {
	return fmt.Sprintf(`
import json as _sandbox_json
_SANDBOX_STATE_BLACKLIST = %s
try:
    with open(%q, "r") as _sandbox_state_fh:
        _sandbox_state = _sandbox_json.load(_sandbox_state_fh)
    if isinstance(_sandbox_state, dict):
        for _sandbox_k, _sandbox_v in _sandbox_state.items():
            if _sandbox_k not in _SANDBOX_STATE_BLACKLIST:
                globals()[_sandbox_k] = _sandbox_v
except (FileNotFoundError, ValueError):
    pass
`, pythonStringSet(PythonBuiltinBlacklist), guestStatePath)
}

// PythonEpilogue returns the source appended to guest code when
// persistence is enabled. It filters globals() down to JSON-serializable,
// non-blacklisted entries and writes them back to guestStatePath. A value
// that cannot be JSON-encoded (a function, a module, an open file) is
// silently dropped from the persisted state rather than failing the run.
func PythonEpilogue(guestStatePath string) string {
	return fmt.Sprintf(`
_sandbox_new_state = {}
for _sandbox_k, _sandbox_v in list(globals().items()):
    if _sandbox_k.startswith("_sandbox_") or _sandbox_k in _SANDBOX_STATE_BLACKLIST:
        continue
    try:
        _sandbox_json.dumps(_sandbox_v)
    except TypeError:
        continue
    _sandbox_new_state[_sandbox_k] = _sandbox_v
with open(%q, "w") as _sandbox_state_fh:
    _sandbox_json.dump(_sandbox_new_state, _sandbox_state_fh)
`, guestStatePath)
}

func pythonStringSet(names []string) string {
	out := "{"
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", n)
	}
	return out + "}"
}
