package main

// PackageTarXz packs sources, relocated under root, into an xz-compressed tar
// archive. Errors from the relocation steps and the builder are returned as is.
func PackageTarXz(env Environment, targets, sources []*Node, root string) ([]*Node, error) {
	return packageTar(env, targets, sources, root, ".tar.xz", "-Jc")
}

func PackageTarGz(env Environment, targets, sources []*Node, root string) ([]*Node, error) {
	return packageTar(env, targets, sources, root, ".tar.gz", "-zc")
}

func packageTar(env Environment, targets, sources []*Node, root, suffix, flags string) ([]*Node, error) {
	bld, ok := env.Builder(BuilderTar)
	if !ok {
		return nil, newError(ErrCodeBuilderNotFound, BuilderTar)
	}
	bld.Suffix = suffix
	bld.Flags = []string{flags}

	targets, sources, err := PutIntoPackageRoot(env, targets, sources, root)
	if err != nil {
		return nil, err
	}
	targets, sources, err = StripInstallBuilder(env, targets, sources)
	if err != nil {
		return nil, err
	}
	return env.Build(bld, targets, sources)
}
