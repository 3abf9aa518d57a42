// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"reflect"
)

// JSONOutput is an embeddable struct that adds --json output to a
// command's parameter struct. Embedding it provides the --json flag
// through [BindFlags] and the [JSONOutput.EmitJSON] method.
//
//	type inspectParams struct {
//	    cli.JSONOutput
//	    Strict bool `flag:"strict" desc:"decode in strict mode"`
//	}
//
//	// In Run:
//	if done, err := params.EmitJSON(stdout, report); done {
//	    return err
//	}
//	// ... text formatting ...
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"output as JSON"`
}

// EmitJSON writes result as indented JSON to w if --json is set. It
// returns (true, err) when it handled the output and (false, nil) when
// the caller should write text instead.
//
// Nil slices become empty slices, so the output is [] rather than null.
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(w, normalizeNilSlice(result))
}

// WriteJSON marshals value as indented JSON to w.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
