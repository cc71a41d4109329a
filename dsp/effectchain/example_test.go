package effectchain_test

import (
	"fmt"

	"github.com/cwbudde/algo-menagerie/dsp/effectchain"
)

func ExamplePreset() {
	chain, _ := effectchain.Preset(1)
	fmt.Println(chain)

	_, err := effectchain.Preset(4)
	fmt.Println(err)

	// Output:
	// [chorus multiplier tremolo]
	// unknown preset: 4
}

func ExampleParseNames() {
	_, err := effectchain.ParseNames([]string{"chorus", "flanger"})
	fmt.Println(err)

	// Output:
	// effectchain: position 1: "flanger": unknown effect
}
