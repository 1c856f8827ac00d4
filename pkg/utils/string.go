package utils

import (
	"strconv"
	"strings"
)

// Type names the dynamic type of a decoded JSON value.
func Type(v interface{}) string {
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case int:
		return "int"
	case int64:
		return "int64"
	case float64:
		return "float64"
	case map[string]interface{}:
		return "string_interface_map"
	case []interface{}:
		return "interface_slice"
	default:
		return "unknown"
	}
}

func IsStringAnyMap(v interface{}) bool {
	return Type(v) == "string_interface_map"
}

func All2Str(v interface{}) (value string, ok bool) {
	ok = true
	switch t := v.(type) {
	case string:
		value = t
	case int:
		value = strconv.Itoa(t)
	case int64:
		value = strconv.FormatInt(t, 10)
	case float64:
		value = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		value = strconv.FormatBool(t)
	default:
		ok = false
	}
	return
}

// convert all to string
func Atoa(v interface{}) string {
	value, _ := All2Str(v)
	return value
}

// All2Int converts numbers and numeric strings to int.
func All2Int(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		return Str2Int(strings.TrimSpace(t))
	}
	return 0, false
}

// All2Bool converts booleans and boolean-like strings ("True", "yes", "1") to bool.
func All2Bool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "yes" || s == "on" || IsTrueStr(s)
	}
	return false
}

func Str2Int(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func Str2Bool(s string) (bool, bool) { // value, ok
	v, err := strconv.ParseBool(s)
	return v, err == nil
}

func IsTrueStr(s string) bool {
	v, yes := Str2Bool(s)
	return yes && v == true
}
