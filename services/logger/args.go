package logsvc

import (
	"fmt"
	"net/http"
)

// logArgs is what the variadic args of a core.Logger call boil down to.
// Expected fmt: error | *http.Request | map[string]interface{} | key, value pairs.
type logArgs struct {
	err    error
	req    *http.Request
	fields map[string]interface{}
}

func parseArgs(args []interface{}) logArgs {
	var la logArgs
	addField := func(k string, v interface{}) {
		if la.fields == nil {
			la.fields = make(map[string]interface{}, len(args))
		}
		la.fields[k] = v
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			if la.err == nil {
				la.err = arg
			} else {
				addField(fmt.Sprintf("error%d", i), arg.Error())
			}
		case *http.Request:
			la.req = arg
		case map[string]interface{}:
			for k, v := range arg {
				addField(k, v)
			}
		case string:
			if i+1 < len(args) {
				addField(arg, args[i+1])
				i++
			} else {
				addField(fmt.Sprintf("arg%d", i), arg)
			}
		default:
			addField(fmt.Sprintf("arg%d", i), arg)
		}
	}
	return la
}
