package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"otto/asm"
	"otto/machine"
)

func assembleFile(path string) (asm.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return asm.Program{}, err
	}
	prog, err := asm.Assemble(string(source))
	if err != nil {
		return asm.Program{}, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func loadedMachine(path string) (*machine.Machine, error) {
	prog, err := assembleFile(path)
	if err != nil {
		return nil, err
	}
	m := machine.New()
	if !m.LoadImage(prog.Bytes(), prog.Origin) {
		return nil, fmt.Errorf("%s: program does not fit at origin %04XH", path, prog.Origin)
	}
	return m, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "otto",
		Short:         "Intel 8080 emulator, assembler and debugger",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	runCmd := &cobra.Command{
		Use:   "run [source.asm]",
		Short: "Assemble a program and run it to halt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadedMachine(args[0])
			if err != nil {
				return err
			}
			for m.Running() {
				m.RunCycle()
			}
			os.Stdout.Write(m.Stdout())

			if reason, _ := m.HaltReason(); reason != machine.HaltInstruction {
				return fmt.Errorf("machine halted: %s (PC %04XH)", reason, m.PC())
			}
			return nil
		},
	}

	var output string
	asmCmd := &cobra.Command{
		Use:   "asm [source.asm]",
		Short: "Assemble a program to its binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := assembleFile(args[0])
			if err != nil {
				return err
			}
			image := prog.Bytes()
			if err := os.WriteFile(output, image, 0o644); err != nil {
				return err
			}
			fmt.Printf("%s: %d bytes at origin %04XH\n", output, len(image), prog.Origin)
			return nil
		},
	}
	asmCmd.Flags().StringVarP(&output, "output", "o", "a.bin", "Output image path")

	var themePath string
	debugCmd := &cobra.Command{
		Use:   "debug [source.asm]",
		Short: "Assemble a program and step it in the TUI debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := machine.DefaultTheme()
			if themePath != "" {
				var err error
				if theme, err = machine.LoadTheme(themePath); err != nil {
					return err
				}
			}
			m, err := loadedMachine(args[0])
			if err != nil {
				return err
			}
			if err := m.Debug(theme); err != nil {
				return err
			}
			os.Stdout.Write(m.Stdout())
			return nil
		},
	}
	debugCmd.Flags().StringVar(&themePath, "theme", "", "Path to a yaml color theme")

	rootCmd.AddCommand(runCmd, asmCmd, debugCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
