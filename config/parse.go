package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

const tagPrefix = "viper"

// populateExtractorConfig is used to parse config read through viper
func populateExtractorConfig(v *viper.Viper, config *ExtractorConfig) (*ExtractorConfig, error) {
	if err := recursivelySet(v, reflect.ValueOf(config), ""); err != nil {
		return nil, err
	}
	return config, nil
}

// recursivelySet is used to recursively set conf read from
// files to golang structs. Since nested values are accessed using periods
// we need to recursively parse the values
func recursivelySet(v *viper.Viper, val reflect.Value, prefix string) error {
	if val.Kind() != reflect.Ptr {
		return errors.New("config target must be a pointer")
	}

	// dereference
	val = reflect.Indirect(val)
	if val.Kind() != reflect.Struct {
		return errors.New("config target must point to a struct")
	}

	// grab the type for this instance
	vType := reflect.TypeOf(val.Interface())

	// go through child fields
	for i := 0; i < val.NumField(); i++ {
		thisField := val.Field(i)
		thisType := vType.Field(i)
		tags := getTags(thisType)
		// try to fetch value for each key using multiple tags
		for _, tag := range tags {
			key := prefix + tag
			switch thisField.Kind() {
			case reflect.Struct:
				if err := recursivelySet(v, thisField.Addr(), key+"."); err != nil {
					return err
				}
			case reflect.Int, reflect.Int32, reflect.Int64:
				// skip the update if tag is not set in viper
				if !v.IsSet(key) {
					continue
				}
				thisField.SetInt(v.GetInt64(key))
			case reflect.String:
				// skip the update if tag is not set in viper
				if v.GetString(key) == "" && thisField.String() != "" {
					continue
				}
				thisField.SetString(v.GetString(key))
			case reflect.Bool:
				// skip the update if tag is not set in viper
				if !v.GetBool(key) && thisField.Bool() {
					continue
				}
				thisField.SetBool(v.GetBool(key))
			default:
				return fmt.Errorf("unexpected type detected ~ aborting: %s", thisField.Kind())
			}
		}
	}

	return nil
}

func getTags(field reflect.StructField) []string {
	tag := field.Tag
	values := []string{}
	for _, prefix := range []string{tagPrefix, "yaml", "json", "env", "mapstructure"} {
		if v := tag.Get(prefix); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return []string{field.Name}
	}
	return values
}
