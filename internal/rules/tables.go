package rules

import "github.com/snipe-dev/snipe/internal/types"

// UnsafeFunc is one entry in the closed C unsafe-function table (R-UNSAFE).
// gets is the sole ERROR; spec.md §4.4 leaves the rest at WARNING.
type UnsafeFunc struct {
	Name        string
	Severity    types.Severity
	Rationale   string
	Replacement string
}

var unsafeCFunctions = buildUnsafeTable()

func buildUnsafeTable() map[string]UnsafeFunc {
	warn := func(name, rationale, replacement string) UnsafeFunc {
		return UnsafeFunc{Name: name, Severity: types.SeverityWarning, Rationale: rationale, Replacement: replacement}
	}
	table := []UnsafeFunc{
		{Name: "gets", Severity: types.SeverityError, Rationale: "cannot bound the input length; any input longer than the destination buffer overruns it", Replacement: "fgets(buf, sizeof(buf), stdin)"},
		warn("strcpy", "does not bound the copy length", "strncpy or strlcpy"),
		warn("strcat", "does not bound the concatenated length", "strncat or strlcat"),
		warn("sprintf", "does not bound the formatted output length", "snprintf"),
		warn("vsprintf", "does not bound the formatted output length", "vsnprintf"),
		warn("scanf", "%s conversion has no width limit", "fgets plus sscanf with a width limit"),
		warn("sscanf", "%s conversion has no width limit", "sscanf with an explicit width"),
		warn("fscanf", "%s conversion has no width limit", "fgets plus sscanf with a width limit"),
		warn("vscanf", "%s conversion has no width limit", "a bounded scanning routine"),
		warn("strncpy", "does not guarantee NUL-termination when src is longer than n", "strlcpy"),
		warn("strncat", "n is the max appended bytes, not the destination size, a common miscount", "strlcat"),
		warn("memcpy", "no overlap check; undefined behavior if src and dst alias", "memmove when regions may overlap"),
		warn("strcpy_s", "still length-unchecked on some platforms' shims", "strlcpy"),
		warn("realpath", "PATH_MAX-sized static buffer overrun on some libc implementations", "realpath with an explicit resolved_path buffer of PATH_MAX"),
		warn("getwd", "no bound on the path length written", "getcwd"),
		warn("tmpnam", "race between name generation and file creation (TOCTOU)", "mkstemp"),
		warn("tempnam", "race between name generation and file creation (TOCTOU)", "mkstemp"),
		warn("mktemp", "race between name generation and file creation (TOCTOU)", "mkstemp"),
		warn("rewind", "silently discards a prior stream error", "fseek with explicit error checking"),
		warn("gets_s", "callers still routinely pass an incorrect size argument", "fgets"),
		warn("atoi", "gives no indication of a conversion failure", "strtol with error checking"),
		warn("atol", "gives no indication of a conversion failure", "strtol with error checking"),
		warn("atoll", "gives no indication of a conversion failure", "strtoll with error checking"),
		warn("atof", "gives no indication of a conversion failure", "strtod with error checking"),
		warn("gets_s_", "still relies on caller-supplied size being correct", "fgets"),
		warn("strtok", "uses hidden static state, not reentrant", "strtok_r"),
		warn("strtok_r", "easy to misuse the saveptr across calls", "a dedicated tokenizer when reentrancy matters"),
		warn("asctime", "writes into a shared static buffer", "asctime_r or strftime"),
		warn("ctime", "writes into a shared static buffer", "ctime_r or strftime"),
		warn("gmtime", "writes into a shared static buffer", "gmtime_r"),
		warn("localtime", "writes into a shared static buffer", "localtime_r"),
		warn("gcvt", "writes into a caller buffer with no length argument", "snprintf with a float conversion"),
		warn("ecvt", "writes into a shared static buffer", "snprintf with a float conversion"),
		warn("fcvt", "writes into a shared static buffer", "snprintf with a float conversion"),
		warn("getpass", "obsolete, often not even declared by modern libc", "a terminal-echo-disabling read loop"),
		warn("crypt", "DES-based and obsolete", "a modern password hashing library"),
		warn("system", "passes the argument to a shell, and is easy to inject into", "fork/exec with an explicit argv"),
		warn("popen", "passes the argument to a shell, and is easy to inject into", "fork/exec with an explicit argv"),
		warn("exec", "not a standard libc call in most of these forms; frequently misused for argument quoting", "execv/execve with an explicit argv"),
		warn("execlp", "searches PATH, which can be hijacked", "execve with an absolute path"),
		warn("execvp", "searches PATH, which can be hijacked", "execve with an absolute path"),
		warn("setuid", "silently ignored failures can leave a process unexpectedly privileged", "setuid with explicit return-value checking"),
		warn("setgid", "silently ignored failures can leave a process unexpectedly privileged", "setgid with explicit return-value checking"),
		warn("chmod", "TOCTOU race between path resolution and permission change", "fchmod on an already-open descriptor"),
		warn("chown", "TOCTOU race between path resolution and ownership change", "fchown on an already-open descriptor"),
		warn("access", "TOCTOU race between the check and the later use", "attempt the operation directly and handle the error"),
		warn("tmpfile", "predictable naming on some platforms", "mkstemp plus unlink"),
		warn("rand", "not cryptographically secure and has a short period on some libcs", "arc4random or a CSPRNG"),
		warn("srand", "seeding from time(NULL) is predictable", "arc4random_stir or a CSPRNG"),
		warn("alloca", "stack-allocated size is attacker-influenced in common call patterns, can overflow the stack", "malloc with explicit size validation"),
		warn("strdupa", "a GNU extension over alloca, same stack-overflow risk", "strdup"),
		warn("bcopy", "deprecated BSD alias with argument order easy to confuse with memcpy", "memmove"),
		warn("bzero", "deprecated BSD alias", "memset(ptr, 0, n)"),
		warn("vfork", "undefined behavior if the child modifies memory before exec", "fork or posix_spawn"),
		warn("wcscpy", "wide-char analogue of strcpy, same unbounded-copy risk", "wcsncpy with explicit NUL-termination"),
		warn("wcscat", "wide-char analogue of strcat, same unbounded-append risk", "wcsncat"),
		warn("swprintf", "some libcs' implementations omit the size argument in older prototypes", "swprintf with the POSIX-standard size argument"),
		warn("sprintf_s", "still requires the caller to supply a correct size", "snprintf"),
		warn("vsprintf_s", "still requires the caller to supply a correct size", "vsnprintf"),
		warn("getlogin", "writes into a shared static buffer", "getlogin_r"),
		warn("ttyname", "writes into a shared static buffer", "ttyname_r"),
		warn("inet_ntoa", "writes into a shared static buffer", "inet_ntop"),
		warn("freopen", "silently closes the original stream on failure in some usages", "freopen with explicit NULL-return checking"),
		warn("strerror", "writes into a shared static buffer on non-reentrant libcs", "strerror_r"),
	}
	out := make(map[string]UnsafeFunc, len(table))
	for _, e := range table {
		out[e.Name] = e
	}
	return out
}

// formatArgIndex maps a printf-family callee to the 1-based position of its
// format-string argument, per spec.md §6.
var formatArgIndex = map[string]int{
	"printf": 1, "fprintf": 2, "sprintf": 2, "snprintf": 3,
	"scanf": 1, "fscanf": 2, "sscanf": 2,
}

// pythonBuiltins is the fixed allowlist R-UNDEFINED consults for Python.
var pythonBuiltins = map[string]bool{}

func init() {
	for _, n := range []string{
		"abs", "all", "any", "ascii", "bin", "bool", "bytearray", "bytes",
		"callable", "chr", "classmethod", "compile", "complex", "delattr",
		"dict", "dir", "divmod", "enumerate", "eval", "exec", "filter",
		"float", "format", "frozenset", "getattr", "globals", "hasattr",
		"hash", "help", "hex", "id", "input", "int", "isinstance",
		"issubclass", "iter", "len", "list", "locals", "map", "max",
		"memoryview", "min", "next", "object", "oct", "open", "ord", "pow",
		"print", "property", "range", "repr", "reversed", "round", "set",
		"setattr", "slice", "sorted", "staticmethod", "str", "sum", "super",
		"tuple", "type", "vars", "zip", "self", "cls", "True", "False",
		"None", "NotImplemented", "Ellipsis", "__name__", "__file__",
		"__doc__", "Exception", "ValueError", "TypeError", "KeyError",
		"IndexError", "StopIteration", "RuntimeError", "NotImplementedError",
		"AttributeError", "ImportError", "FileNotFoundError", "OSError",
	} {
		pythonBuiltins[n] = true
	}
}

// cStdlibAllowlist is the fixed allowlist R-UNDEFINED consults for C,
// covering the standard library surface that a repo scan never declares.
var cStdlibAllowlist = map[string]bool{}

func init() {
	for _, n := range []string{
		"printf", "fprintf", "sprintf", "snprintf", "scanf", "fscanf", "sscanf",
		"gets", "puts", "putchar", "getchar", "fgets", "fputs", "fopen", "fclose",
		"fread", "fwrite", "fflush", "fseek", "ftell", "rewind", "feof",
		"ferror", "perror", "malloc", "calloc", "realloc", "free", "memcpy",
		"memmove", "memset", "memcmp", "strlen", "strcpy", "strncpy",
		"strcat", "strncat", "strcmp", "strncmp", "strchr", "strrchr",
		"strstr", "strtok", "strtol", "strtoul", "strtod", "atoi", "atol",
		"atof", "abs", "labs", "div", "exit", "abort", "atexit", "system",
		"qsort", "bsearch", "rand", "srand", "time", "clock", "difftime",
		"sin", "cos", "tan", "sqrt", "pow", "exp", "log", "log10", "floor",
		"ceil", "fabs", "fmod", "isalpha", "isdigit", "isspace", "isupper",
		"islower", "toupper", "tolower", "assert", "setjmp", "longjmp",
		"va_start", "va_end", "va_arg", "va_copy", "errno", "NULL",
	} {
		cStdlibAllowlist[n] = true
	}
}

// compatible implements the assignment-compatibility table shared by
// R-TYPE-ARRAY-WRITE, R-TYPE-ASSIGN, R-TYPE-RETURN and R-ARG-TYPE.
func compatible(lang types.Language, target, value types.ApparentType) bool {
	if target == types.Unknown || value == types.Unknown {
		return true
	}
	if target == value {
		return true
	}
	if lang == types.LangC {
		switch target {
		case "char":
			return value == "char"
		case "int":
			return value == "int" || value == "char"
		case "float":
			return value == "float" || value == "int"
		}
		return false
	}
	// Python: only the documented int -> float widening is permitted.
	return target == "float" && value == "int"
}
