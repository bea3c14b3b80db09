// Command dictinspect loads a dictionary and reports its shape: word
// counts per lexicon, connector dimensions, and category rules. It is
// a diagnostic load-and-report tool, not a tokenizer front end.
package main

import (
	"flag"
	"fmt"
	"runtime/pprof"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/himawari-nlp/vibratio/charprop"
	"github.com/himawari-nlp/vibratio/dictionary"
)

func main() {
	var args struct {
		Dict string `name:"dict" usage:"path to a .dic dictionary file"`
	}
	trustCache := flag.Bool("trust_cache", false, "skip structural validation if a cache marker proves this file was validated before")
	unchecked := flag.Bool("unchecked", false, "skip both the magic check and structural validation entirely")
	cpuprofile := flag.String("cpuprofile", "", "path to write CPU profile")
	easy.ParseFlagsAndArgs(&args)

	if *cpuprofile != "" {
		w := easy.MustCreate(*cpuprofile)
		pprof.StartCPUProfile(w)
		defer func() {
			pprof.StopCPUProfile()
			w.Close()
		}()
	}

	var d *dictionary.Dictionary
	var err error
	switch {
	case *unchecked:
		d, err = dictionary.LoadUnchecked(args.Dict)
	case *trustCache:
		d, err = dictionary.Load(args.Dict, dictionary.TrustCache)
	default:
		d, err = dictionary.Load(args.Dict, dictionary.Validate)
	}
	if err != nil {
		glog.Fatal("error loading dictionary: ", err)
	}
	defer d.Close()

	report(d)
}

func report(d *dictionary.Dictionary) {
	fmt.Printf("system lexicon:  %d words\n", d.SystemLexicon().NumWords())
	if u := d.UserLexicon(); u != nil {
		fmt.Printf("user lexicon:    %d words\n", u.NumWords())
	} else {
		fmt.Println("user lexicon:    (none)")
	}
	if u := d.UnkLexicon(); u != nil {
		fmt.Printf("unknown lexicon: %d categories\n", u.NumWords())
	}

	conn := d.Connector()
	fmt.Printf("connector:       %d left ids x %d right ids\n", conn.NumLeft(), conn.NumRight())
	if d.IdMapper() != nil {
		fmt.Println("id mapper:       present (ids pre-permuted)")
	} else {
		fmt.Println("id mapper:       (none)")
	}

	fmt.Println("character categories:")
	table := d.CharProp()
	for c := charprop.Category(0); c < charprop.Category(charprop.NumCategories()); c++ {
		rule := table.Rule(c)
		fmt.Printf("  %-12s invoke=%-5v group=%-5v length=%d\n", c, rule.Invoke, rule.Group, rule.Length)
	}
}
