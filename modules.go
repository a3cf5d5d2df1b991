package main

const version = "0.3.0"

// builtinModules is the tool code shipped with sconspp. The legacy root
// package is installed empty; its former subpackages are top level.
func builtinModules() []ModuleSpec {
	return []ModuleSpec{
		{Name: defaultLegacyRoot, Init: func(m *Module) error {
			m.Symbols["__version__"] = version
			return nil
		}},
		{Name: "Node"},
		{Name: "Node.FS", Init: func(m *Module) error {
			m.Symbols["FS"] = NewFS
			m.Symbols["Entry"] = func(env Environment, name string) (*Node, error) {
				return NewFS(env).Entry(name)
			}
			m.Symbols["find_file"] = FindFile
			return nil
		}},
		{Name: "Tool"},
		{Name: "Tool.packaging", Init: func(m *Module) error {
			m.Symbols["putintopackageroot"] = PutIntoPackageRoot
			m.Symbols["stripinstallbuilder"] = StripInstallBuilder
			return nil
		}},
		{Name: "Tool.packaging.tarxz", Init: func(m *Module) error {
			m.Symbols["package"] = Packager(PackageTarXz)
			registerPackager("tarxz", PackageTarXz)
			return nil
		}},
		{Name: "Tool.packaging.targz", Init: func(m *Module) error {
			m.Symbols["package"] = Packager(PackageTarGz)
			registerPackager("targz", PackageTarGz)
			return nil
		}},
		{Name: "python_devel", Init: func(m *Module) error {
			checks := map[string]ConfigCheck{"CheckPython": CheckPython}
			m.Symbols["config_checks"] = checks
			for name, check := range checks {
				registerCheck(name, check)
			}
			return nil
		}},
	}
}

// loadTools imports every tool module named in the build file.
func loadTools(imp Importer, tools []string) error {
	for _, name := range tools {
		if _, err := Resolve(imp, name); err != nil {
			return err
		}
	}
	return nil
}
