package mmapbuf_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/mmapbuf"
)

func ExampleNewAnonymous() {
	buf, err := mmapbuf.NewAnonymous(11, mmapbuf.WithInitialize(' '))
	if err != nil {
		log.Fatal(err)
	}
	defer buf.Close()

	_ = buf.Replace(0, 5, []byte("hello"))
	_, _ = buf.Upcase()

	fmt.Printf("%q\n", buf.String())
	// Output: "HELLO      "
}

func ExampleOpen() {
	dir, err := os.MkdirTemp("", "mmapbuf")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "greeting.txt")
	buf, err := mmapbuf.Open(path, mmapbuf.WithMode(mmapbuf.ModeAppend))
	if err != nil {
		log.Fatal(err)
	}

	_ = buf.Append([]byte("hello, world"))
	_, _ = buf.Gsub(mmapbuf.MustCompile(`(\w+), (\w+)`), []byte("$2, $1"))
	if err := buf.Close(); err != nil {
		log.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	fmt.Println(string(data))
	// Output: world, hello
}
