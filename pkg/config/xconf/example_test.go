package xconf_test

import (
	"fmt"

	"github.com/phray/xtask/pkg/config/xconf"
)

func ExampleLoadBytes() {
	doc := []byte(`
pools:
  - key: IO
    core_size: 2
    max_size: 16
    queue_capacity: 0
    policy: abort
`)
	s, err := xconf.LoadBytes(doc, xconf.FormatYAML)
	if err != nil {
		panic(err)
	}
	cat, _ := s.Catalog()
	spec, _ := cat.Lookup("IO")
	fmt.Println(spec.Key, spec.CoreSize, spec.MaxSize, spec.Policy)
	// Output: IO 2 16 abort
}
