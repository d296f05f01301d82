package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/rs/zerolog/log"
)

// MustLoad loads the config from the given file into v.
func MustLoad(file string, v interface{}) []byte {

	b, err := ioutil.ReadFile(file)
	if err != nil {
		panic(fmt.Sprintf("could not load config from %s: %s", file, err.Error()))
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		panic(fmt.Sprintf("could not unmarshal the config from %s: %s", file, err.Error()))
	}

	log.Info().Str("file", file).Msg("loaded config")

	return b

}

// Load loads the config from the given file into v, reporting errors instead of panicking.
func Load(file string, v interface{}) error {

	b, err := ioutil.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not load config from %s: %w", file, err)
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		return fmt.Errorf("could not unmarshal the config from %s: %w", file, err)
	}

	return nil

}
