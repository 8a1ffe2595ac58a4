package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/job-matcher/internal/store"
)

// skillsFile is the layout of a skills import file:
//
//	resumes:
//	  - resume_id: r1
//	    user_id: u1
//	    skills: [Go, PostgreSQL]
type skillsFile struct {
	Resumes []store.ResumeSkillSet `yaml:"resumes"`
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Manage resume skill sets",
}

var skillsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load resume skill sets from a yaml file into the store",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		importSkills(args[0])
	},
}

func init() {
	skillsCmd.AddCommand(skillsImportCmd)
	rootCmd.AddCommand(skillsCmd)
}

func importSkills(path string) {
	ctx := context.Background()
	logger, config := setup()

	sets, err := readSkillsFile(path)
	if err != nil {
		logger.Fatal("reading skills file", zap.Error(err))
	}

	st, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer st.Close()

	imported := 0
	for _, set := range sets {
		if err := st.SaveResumeSkills(ctx, set); err != nil {
			logger.Error("importing skill set", zap.String("resume_id", set.ResumeID), zap.Error(err))
			continue
		}
		imported++
	}

	logger.Info("skill sets imported", zap.Int("imported", imported), zap.Int("total", len(sets)))
}

func readSkillsFile(path string) ([]store.ResumeSkillSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseSkills(data)
}

func parseSkills(data []byte) ([]store.ResumeSkillSet, error) {
	var file skillsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}

	if len(file.Resumes) == 0 {
		return nil, fmt.Errorf("no resumes found")
	}

	return file.Resumes, nil
}
