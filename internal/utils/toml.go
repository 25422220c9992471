package utils

import (
	"github.com/BurntSushi/toml"
	"github.com/RaveNoX/go-jsonmerge"
)

func TomlDecode(data string) (interface{}, error) {
	var out map[string]interface{}
	_, err := toml.Decode(data, &out)
	return out, err
}

// Merge overlays patch on data. Keys missing from data are ignored.
func Merge(data, patch interface{}) (interface{}, error) {
	out, info := jsonmerge.Merge(data, patch)
	if len(info.Errors) > 0 {
		return nil, info.Errors[0]
	}
	return out, nil
}
