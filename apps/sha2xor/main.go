package main

import (
	"bytes"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/halfgate/sha2pc"
	"github.com/halfgate/sha2pc/circuit"
	"github.com/halfgate/sha2pc/sha256circ"
	"github.com/markkurossi/tabulate"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func main() {
	file := flag.String("c", "data/sha256-bristol-basic.txt",
		"circuit file")
	gen := flag.Bool("gen", false,
		"generate the circuit file if it does not exist")
	useOT := flag.Bool("ot", false,
		"transfer evaluator labels with oblivious transfer")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] message-length\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	n, err := strconv.Atoi(flag.Arg(0))
	if err != nil || n <= 0 {
		fmt.Fprintf(os.Stderr, "invalid message length '%s'\n", flag.Arg(0))
		os.Exit(1)
	}

	if err := run(*file, *gen, *useOT, *verbose, n); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(file string, gen, useOT, verbose bool, n int) error {
	if gen {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			if err := generateCircuit(file); err != nil {
				return err
			}
			fmt.Printf("Generated circuit file %s\n", file)
		}
	}

	circ, err := circuit.Parse(file)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("circuit file %s not found (try -gen)", file)
		}
		return fmt.Errorf("failed to parse circuit file '%s': %s", file, err)
	}
	if verbose {
		fmt.Printf("Circuit: %v\n", circ)
		tabulateStats(circ)
	}

	message := make([]byte, n)
	if _, err := rand.Read(message); err != nil {
		return err
	}
	for i := range message {
		message[i] = letters[int(message[i])%len(letters)]
	}

	share0 := make([]byte, n)
	if _, err := rand.Read(share0); err != nil {
		return err
	}
	share1 := make([]byte, n)
	for i := range share1 {
		share1[i] = message[i] ^ share0[i]
	}

	expected := sha256.Sum256(message)

	garbler, err := sha2pc.NewParty(sha2pc.RoleGarbler, share0, circ)
	if err != nil {
		return err
	}
	garbler.Verbose = verbose

	result, err := garbler.StartGarbling(rand.Reader)
	if err != nil {
		return err
	}

	evaluator, err := sha2pc.NewParty(sha2pc.RoleEvaluator, share1, circ)
	if err != nil {
		return err
	}
	evaluator.Verbose = verbose

	var digest []byte
	if useOT {
		digest, err = evaluator.StartEvaluatingOT(rand.Reader,
			elliptic.P256(), result)
	} else {
		digest, err = evaluator.StartEvaluating(result)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Input message: %s\n", message)
	fmt.Printf("Expected hash: %s\n", hex.EncodeToString(expected[:]))
	fmt.Printf("Garbled  hash: %s\n", hex.EncodeToString(digest))

	if !bytes.Equal(digest, expected[:]) {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

func generateCircuit(file string) error {
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := sha256circ.Generate(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func tabulateStats(circ *circuit.Circuit) {
	tab := tabulate.New(tabulate.Github)
	tab.Header("XOR").SetAlign(tabulate.MR)
	tab.Header("AND").SetAlign(tabulate.MR)
	tab.Header("INV").SetAlign(tabulate.MR)
	tab.Header("Gates").SetAlign(tabulate.MR)
	tab.Header("Wires").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column(strconv.Itoa(circ.XorCnt))
	row.Column(strconv.Itoa(circ.AndCnt))
	row.Column(strconv.Itoa(circ.InvCnt))
	row.Column(strconv.Itoa(circ.XorCnt + circ.AndCnt + circ.InvCnt))
	row.Column(strconv.Itoa(circ.ExtraInputWire))

	tab.Print(os.Stdout)
}
