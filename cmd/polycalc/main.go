// polycalc reads one or two polynomial files and prints them, their sum and
// product, and optionally their values at a point.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/errgo.v1"

	"polyterm/cmd"
	"polyterm/poly"
)

var (
	xFlag    = flag.Float64("x", 0, "evaluate each polynomial at this value")
	validate = flag.Bool("validate", false, "fail on input that is not in canonical form")
	logLevel = flag.String("loglevel", "warning", "log level")
)

type config struct {
	x        *float64
	validate bool
}

func main() {
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		cmd.Die(errgo.Mask(err))
	}
	log.SetLevel(level)

	var conf config
	conf.validate = *validate
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "x" {
			conf.x = xFlag
		}
	})

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		log.Errorf("usage: %s [-x value] [-validate] file1 [file2]", os.Args[0])
		cmd.Die(errgo.New("expected one or two polynomial files"))
	}

	err = run(os.Stdout, conf, args)
	cmd.Die(err)
}

func readPoly(path string, conf config) (*poly.Poly, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errgo.Mask(err)
		}
		defer f.Close()
		r = f
	}
	p, err := poly.Parse(r)
	if err != nil {
		return nil, errgo.NoteMask(err, fmt.Sprintf("cannot read %q", path), errgo.Any)
	}
	if verr := p.Validate(); verr != nil {
		if conf.validate {
			return nil, errgo.Notef(verr, "%q is not canonical", path)
		}
		log.WithField("file", path).Warningf("non-canonical input: %v", verr)
	}
	return p, nil
}

func run(w io.Writer, conf config, paths []string) error {
	var polys []*poly.Poly
	for _, path := range paths {
		p, err := readPoly(path, conf)
		if err != nil {
			return errgo.Mask(err, errgo.Any)
		}
		polys = append(polys, p)
	}

	type result struct {
		label string
		p     *poly.Poly
	}
	var results []result
	for i, p := range polys {
		results = append(results, result{fmt.Sprintf("p%d", i+1), p})
	}
	if len(polys) == 2 {
		results = append(results,
			result{"sum", poly.NewPoly().Add(polys[0], polys[1])},
			result{"product", poly.NewPoly().Mul(polys[0], polys[1])},
		)
	}

	for _, r := range results {
		_, err := fmt.Fprintf(w, "%s = %v\n", r.label, r.p)
		if err != nil {
			return errgo.Mask(err)
		}
	}
	if conf.x != nil {
		x := *conf.x
		for _, r := range results {
			_, err := fmt.Fprintf(w, "%s(%s) = %s\n", r.label, poly.FormatCoeff(x), poly.FormatCoeff(r.p.Eval(x)))
			if err != nil {
				return errgo.Mask(err)
			}
		}
	}
	return nil
}
